// Package whiteboard opens the collaborative canvas of a team and keeps the ephemeral
// reactions & comments overlay drawn on top of it.
package whiteboard

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/breadcrumb"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
)

const (
	roomPrefix     = "collaBoard-"
	maxCommentSize = 1000
)

var (
	// errors
	ErrNotMember    = core.NewPermissionError("You are not a member of this team.")
	ErrShapeMissing = core.NewValidationError(
		errors.New("Select a shape first."),
		core.FieldError{Field: "shapeId", Error: "shapeId is a required field"},
	)
	ErrEmptyComment = core.NewValidationError(
		errors.New("Comment cannot be empty."),
		core.FieldError{Field: "text", Error: "text is a required field"},
	)
	ErrCommentTooLong = core.NewValidationError(
		errors.Errorf("Comment must be at most %d characters.", maxCommentSize),
		core.FieldError{Field: "text", Error: "text is too long"},
	)
)

// RoomID keys the canvas session of a team. Each part is escaped so distinct triples never collide.
func RoomID(classroomID, projectName, teamName string) string {
	return roomPrefix + url.PathEscape(classroomID) + "/" + url.PathEscape(projectName) + "/" + url.PathEscape(teamName)
}

// Ref addresses the whiteboard of a team.
type Ref struct {
	Classroom string
	Project   string
	Team      string
}

func (r Ref) RoomID() string {
	return RoomID(r.Classroom, r.Project, r.Team)
}

// Path is the frontend route of the whiteboard.
func (r Ref) Path() string {
	return "/whiteboard/" + url.PathEscape(r.Classroom) + "/" + url.PathEscape(r.Project) + "/" + url.PathEscape(r.Team)
}

// Room is everything the client needs to mount the canvas.
type Room struct {
	ID          string             `json:"roomId"`
	SyncURL     string             `json:"syncUrl,omitempty"`
	Classroom   string             `json:"classroom"`
	Project     string             `json:"project"`
	Team        string             `json:"team"`
	Members     []project.Member   `json:"members"`
	Breadcrumbs []breadcrumb.Crumb `json:"breadcrumbs"`
}

type (
	Service interface {
		// OpenRoom lets the owning teacher or a team member in and stamps the member's last access.
		OpenRoom(ctx context.Context, sess core.Session, ref Ref) (Room, error)
		React(ctx context.Context, sess core.Session, ref Ref, shapeID, kind string) (Summary, error)
		AddComment(ctx context.Context, sess core.Session, ref Ref, shapeID, text string) (Comment, error)
		Comments(ctx context.Context, sess core.Session, ref Ref, shapeID string) ([]Comment, error)
		Summary(ctx context.Context, sess core.Session, ref Ref, shapeID string) (Summary, error)
		History(ctx context.Context, sess core.Session, ref Ref) ([]Action, error)
	}

	service struct {
		conf       *core.Config
		classrooms classroom.Service
		projects   project.Service
		repo       project.Repository
		overlay    OverlayStore
		now        func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	classrooms classroom.Service,
	projects project.Service,
	repo project.Repository,
	overlay OverlayStore,
) Service {
	return &service{
		conf:       conf,
		classrooms: classrooms,
		projects:   projects,
		repo:       repo,
		overlay:    overlay,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (svc *service) OpenRoom(ctx context.Context, sess core.Session, ref Ref) (Room, error) {
	team, member, err := svc.authorize(ctx, sess, ref)
	if err != nil {
		return Room{}, err
	}

	now := svc.now()
	if member != nil {
		if err = svc.repo.TouchMember(ctx, ref.Classroom, ref.Project, ref.Team, member.StudentID, now); err != nil {
			return Room{}, errors.Wrap(err, "stamping last access")
		}
		for i := range team.Members {
			if team.Members[i].StudentID == member.StudentID {
				team.Members[i].LastAccessed = &now
			}
		}
	}
	if err = svc.log(ctx, sess, ref, Action{Kind: ActionOpen, Timestamp: now}); err != nil {
		return Room{}, err
	}

	room := Room{
		ID:          ref.RoomID(),
		Classroom:   ref.Classroom,
		Project:     ref.Project,
		Team:        ref.Team,
		Members:     team.Members,
		Breadcrumbs: breadcrumb.Derive(ref.Path(), sess.Role),
	}
	if base := strings.TrimRight(svc.conf.Sync.BaseURL, "/"); base != "" {
		room.SyncURL = base + "/" + url.PathEscape(room.ID)
	}
	if room.Members == nil {
		room.Members = []project.Member{}
	}
	return room, nil
}

func (svc *service) React(ctx context.Context, sess core.Session, ref Ref, shapeID, kind string) (Summary, error) {
	if shapeID == "" {
		return Summary{}, ErrShapeMissing
	}
	if !ValidReaction(kind) {
		return Summary{}, core.NewValidationError(
			errors.Errorf("Unknown reaction %q.", kind),
			core.FieldError{Field: "reaction", Error: "reaction must be one of " + strings.Join(Reactions, ", ")},
		)
	}
	if _, _, err := svc.authorize(ctx, sess, ref); err != nil {
		return Summary{}, err
	}

	room := ref.RoomID()
	counts, err := svc.overlay.AddReaction(ctx, room, shapeID, kind)
	if err != nil {
		return Summary{}, errors.Wrap(err, "adding reaction")
	}
	comments, err := svc.overlay.Comments(ctx, room, shapeID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting comments")
	}
	err = svc.log(ctx, sess, ref, Action{Kind: ActionReact, ShapeID: shapeID, Detail: kind, Timestamp: svc.now()})
	if err != nil {
		return Summary{}, err
	}
	return NewSummary(shapeID, counts, len(comments)), nil
}

func (svc *service) AddComment(ctx context.Context, sess core.Session, ref Ref, shapeID, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	switch {
	case shapeID == "":
		return Comment{}, ErrShapeMissing
	case text == "":
		return Comment{}, ErrEmptyComment
	case utf8.RuneCountInString(text) > maxCommentSize:
		return Comment{}, ErrCommentTooLong
	}
	if _, _, err := svc.authorize(ctx, sess, ref); err != nil {
		return Comment{}, err
	}

	c := Comment{
		ID:        uuid.NewString(),
		ShapeID:   shapeID,
		Author:    author(sess),
		Text:      text,
		Timestamp: svc.now(),
	}
	if err := svc.overlay.AddComment(ctx, ref.RoomID(), c); err != nil {
		return Comment{}, errors.Wrap(err, "adding comment")
	}
	err := svc.log(ctx, sess, ref, Action{Kind: ActionComment, ShapeID: shapeID, Detail: text, Timestamp: c.Timestamp})
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

func (svc *service) Comments(ctx context.Context, sess core.Session, ref Ref, shapeID string) ([]Comment, error) {
	if _, _, err := svc.authorize(ctx, sess, ref); err != nil {
		return nil, err
	}
	comments, err := svc.overlay.Comments(ctx, ref.RoomID(), shapeID)
	if err != nil {
		return nil, errors.Wrap(err, "listing comments")
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

func (svc *service) Summary(ctx context.Context, sess core.Session, ref Ref, shapeID string) (Summary, error) {
	if _, _, err := svc.authorize(ctx, sess, ref); err != nil {
		return Summary{}, err
	}
	room := ref.RoomID()
	counts, err := svc.overlay.Reactions(ctx, room, shapeID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "getting reactions")
	}
	comments, err := svc.overlay.Comments(ctx, room, shapeID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting comments")
	}
	return NewSummary(shapeID, counts, len(comments)), nil
}

func (svc *service) History(ctx context.Context, sess core.Session, ref Ref) ([]Action, error) {
	if _, _, err := svc.authorize(ctx, sess, ref); err != nil {
		return nil, err
	}
	actions, err := svc.overlay.History(ctx, ref.RoomID())
	if err != nil {
		return nil, errors.Wrap(err, "getting history")
	}
	if actions == nil {
		actions = []Action{}
	}
	return actions, nil
}

// authorize returns the team of ref and, for students, their membership.
func (svc *service) authorize(ctx context.Context, sess core.Session, ref Ref) (project.Team, *project.Member, error) {
	// classroom access: owning teacher or rostered student
	if _, err := svc.classrooms.Get(ctx, sess, ref.Classroom); err != nil {
		return project.Team{}, nil, err
	}
	team, err := svc.projects.ReadTeam(ctx, sess, ref.Classroom, ref.Project, ref.Team)
	if err != nil {
		return project.Team{}, nil, err
	}
	if sess.IsTeacher() {
		return team, nil, nil
	}

	key := ""
	if sess.LSUID != "" {
		key = classroom.StudentKey(sess.LSUID, "")
	}
	for i, m := range team.Members {
		if (key != "" && m.StudentID == key) || strings.EqualFold(m.Email, sess.Email) {
			return team, &team.Members[i], nil
		}
	}
	return project.Team{}, nil, ErrNotMember
}

func (svc *service) log(ctx context.Context, sess core.Session, ref Ref, a Action) error {
	a.Author = author(sess)
	return errors.Wrap(svc.overlay.LogAction(ctx, ref.RoomID(), a, historyLimit), "logging action")
}

func author(sess core.Session) string {
	if sess.Name != "" {
		return sess.Name
	}
	return sess.Email
}
