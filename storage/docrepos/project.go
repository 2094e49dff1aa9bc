package docrepos

import (
	"context"
	"sort"
	"time"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

type projectDoc struct {
	Name        string    `doc:"projectName"`
	Description string    `doc:"description"`
	DueDate     time.Time `doc:"dueDate"`
	Status      string    `doc:"status"`
	CreatedAt   time.Time `doc:"createdAt"`
}

type memberDoc struct {
	Name         string     `doc:"name"`
	Email        string     `doc:"email"`
	LastAccessed *time.Time `doc:"lastAccessed"`
}

func projectData(p project.Project) map[string]interface{} {
	return map[string]interface{}{
		"projectName": p.Name,
		"description": p.Description,
		"dueDate":     p.DueDate,
		"status":      p.Status,
		"createdAt":   p.CreatedAt,
	}
}

func teamData(t project.Team) map[string]interface{} {
	data := make(map[string]interface{}, len(t.Members))
	for _, m := range t.Members {
		md := map[string]interface{}{
			"name":  m.Name,
			"email": m.Email,
		}
		if m.LastAccessed != nil {
			md["lastAccessed"] = *m.LastAccessed
		}
		data[m.StudentID] = md
	}
	return data
}

func toProject(doc docstore.Doc) (project.Project, error) {
	var d projectDoc
	if err := decode(doc.Data, &d); err != nil {
		return project.Project{}, core.NewRepositoryError("Could not read project "+doc.ID, err)
	}
	return project.Project{
		Name:        doc.ID,
		Description: d.Description,
		DueDate:     d.DueDate,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}, nil
}

// toTeam reads a team document: studentID -> {name, email, lastAccessed}.
// Members stored as a bare "Last, First" string are read too.
func toTeam(doc docstore.Doc) (project.Team, error) {
	t := project.Team{Name: doc.ID, Members: make([]project.Member, 0, len(doc.Data))}
	for id, v := range doc.Data {
		m := project.Member{StudentID: id}
		switch v := v.(type) {
		case string:
			m.Name = v
		case map[string]interface{}:
			var d memberDoc
			if err := decode(v, &d); err != nil {
				return project.Team{}, core.NewRepositoryError("Could not read team "+doc.ID, err)
			}
			m.Name, m.Email, m.LastAccessed = d.Name, d.Email, d.LastAccessed
		default:
			continue
		}
		t.Members = append(t.Members, m)
	}
	sort.Slice(t.Members, func(i, j int) bool {
		if t.Members[i].Name != t.Members[j].Name {
			return t.Members[i].Name < t.Members[j].Name
		}
		return t.Members[i].StudentID < t.Members[j].StudentID
	})
	return t, nil
}

type projectRepository struct {
	store docstore.Store
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(store docstore.Store) project.Repository {
	return &projectRepository{store: store}
}

func (repo *projectRepository) CreateProject(ctx context.Context, courseID string, p project.Project) error {
	err := repo.store.Set(ctx, projectPath(courseID, p.Name), projectData(p))
	return storeError(err, "Could not create the project", nil)
}

func (repo *projectRepository) GetProject(ctx context.Context, courseID, name string) (project.Project, error) {
	doc, err := repo.store.Get(ctx, projectPath(courseID, name))
	if err != nil {
		return project.Project{}, storeError(err, "Could not load the project", project.ErrNotFound)
	}
	return toProject(doc)
}

func (repo *projectRepository) ListProjects(ctx context.Context, courseID string) ([]project.Project, error) {
	docs, err := repo.store.List(ctx, projectsCol(courseID))
	if err != nil {
		return nil, storeError(err, "Could not load the projects", nil)
	}
	projects := make([]project.Project, 0, len(docs))
	for _, doc := range docs {
		p, err := toProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, courseID string, p project.Project) error {
	err := repo.store.Merge(ctx, projectPath(courseID, p.Name), map[string]interface{}{
		"description": p.Description,
		"dueDate":     p.DueDate,
		"status":      p.Status,
	})
	return storeError(err, "Could not update the project", nil)
}

func (repo *projectRepository) DeleteProject(ctx context.Context, courseID, name string) error {
	return storeError(repo.store.Delete(ctx, projectPath(courseID, name)), "Could not delete the project", nil)
}

func (repo *projectRepository) MarkOverdue(ctx context.Context, courseID string, names ...string) error {
	ops := make([]docstore.Op, 0, len(names))
	for _, name := range names {
		ops = append(ops, docstore.MergeOp(projectPath(courseID, name), map[string]interface{}{
			"status": project.StatusOverdue,
		}))
	}
	return storeError(commitChunked(ctx, repo.store, ops), "Could not update the projects", nil)
}

func (repo *projectRepository) ListCourseIDs(ctx context.Context) ([]string, error) {
	docs, err := repo.store.List(ctx, colClassrooms)
	if err != nil {
		return nil, storeError(err, "Could not load the classrooms", nil)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func (repo *projectRepository) ListTeams(ctx context.Context, courseID, projectName string) ([]project.Team, error) {
	docs, err := repo.store.List(ctx, teamsCol(courseID, projectName))
	if err != nil {
		return nil, storeError(err, "Could not load the teams", nil)
	}
	teams := make([]project.Team, 0, len(docs))
	for _, doc := range docs {
		t, err := toTeam(doc)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (repo *projectRepository) GetTeam(ctx context.Context, courseID, projectName, team string) (project.Team, error) {
	doc, err := repo.store.Get(ctx, teamPath(courseID, projectName, team))
	if err != nil {
		return project.Team{}, storeError(err, "Could not load the team", project.ErrTeamNotFound)
	}
	return toTeam(doc)
}

// SaveTeams commits the plan in a single batch.
func (repo *projectRepository) SaveTeams(ctx context.Context, courseID, projectName string, plan project.Plan) error {
	if plan.Empty() {
		return nil
	}
	ops := make([]docstore.Op, 0, len(plan.Write)+len(plan.Delete))
	for _, t := range plan.Write {
		ops = append(ops, docstore.SetOp(teamPath(courseID, projectName, t.Name), teamData(t)))
	}
	for _, name := range plan.Delete {
		ops = append(ops, docstore.DeleteOp(teamPath(courseID, projectName, name)))
	}
	return storeError(repo.store.Commit(ctx, ops...), "Could not save the teams", nil)
}

func (repo *projectRepository) DeleteTeam(ctx context.Context, courseID, projectName, team string) error {
	err := repo.store.Delete(ctx, teamPath(courseID, projectName, team))
	return storeError(err, "Could not delete the team", nil)
}

// TouchMember merges the access time into the member entry. A member no longer in the team is left out.
func (repo *projectRepository) TouchMember(ctx context.Context, courseID, projectName, team, studentID string, at time.Time) error {
	path := teamPath(courseID, projectName, team)
	doc, err := repo.store.Get(ctx, path)
	if err != nil {
		return storeError(err, "Could not load the team", project.ErrTeamNotFound)
	}
	if _, ok := doc.Data[studentID].(map[string]interface{}); !ok {
		return nil
	}
	err = repo.store.Merge(ctx, path, map[string]interface{}{
		studentID: map[string]interface{}{"lastAccessed": at},
	})
	return storeError(err, "Could not update the team", nil)
}
