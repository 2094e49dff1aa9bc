package docrepos

import (
	"context"
	"time"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

type classroomDoc struct {
	CourseID     string    `doc:"courseID"`
	Name         string    `doc:"class_name"`
	TeacherEmail string    `doc:"teacherEmail"`
	Semester     string    `doc:"semester"`
	CreatedAt    time.Time `doc:"createdAt"`
}

type studentDoc struct {
	FirstName  string    `doc:"firstName"`
	LastName   string    `doc:"lastName"`
	Email      string    `doc:"email"`
	LSUID      string    `doc:"lsuID"`
	AssignedAt time.Time `doc:"assignedAt"`
}

func classroomData(c classroom.Classroom) map[string]interface{} {
	return map[string]interface{}{
		"courseID":     c.CourseID,
		"class_name":   c.Name,
		"teacherEmail": c.TeacherEmail,
		"semester":     c.Semester,
		"createdAt":    c.CreatedAt,
	}
}

func studentData(s classroom.Student) map[string]interface{} {
	return map[string]interface{}{
		"firstName":  s.FirstName,
		"lastName":   s.LastName,
		"email":      s.Email,
		"lsuID":      s.LSUID,
		"assignedAt": s.AssignedAt,
	}
}

func toClassroom(doc docstore.Doc) (classroom.Classroom, error) {
	var d classroomDoc
	if err := decode(doc.Data, &d); err != nil {
		return classroom.Classroom{}, core.NewRepositoryError("Could not read classroom "+doc.ID, err)
	}
	return classroom.Classroom{
		CourseID:     doc.ID,
		Name:         d.Name,
		Semester:     d.Semester,
		TeacherEmail: d.TeacherEmail,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func toStudent(doc docstore.Doc) (classroom.Student, error) {
	var d studentDoc
	if err := decode(doc.Data, &d); err != nil {
		return classroom.Student{}, core.NewRepositoryError("Could not read student "+doc.ID, err)
	}
	return classroom.Student{
		ID:         doc.ID,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		LSUID:      d.LSUID,
		AssignedAt: d.AssignedAt,
	}, nil
}

type classroomRepository struct {
	store docstore.Store
}

var _ classroom.Repository = (*classroomRepository)(nil)

func NewClassroomRepository(store docstore.Store) classroom.Repository {
	return &classroomRepository{store: store}
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, c classroom.Classroom, students []classroom.Student) error {
	ops := make([]docstore.Op, 0, len(students)+1)
	ops = append(ops, docstore.SetOp(classroomPath(c.CourseID), classroomData(c)))
	for _, s := range students {
		ops = append(ops, docstore.SetOp(studentPath(c.CourseID, s.ID), studentData(s)))
	}
	return storeError(commitChunked(ctx, repo.store, ops), "Could not create the classroom", nil)
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, courseID string) (classroom.Classroom, error) {
	doc, err := repo.store.Get(ctx, classroomPath(courseID))
	if err != nil {
		return classroom.Classroom{}, storeError(err, "Could not load the classroom", classroom.ErrNotFound)
	}
	return toClassroom(doc)
}

func (repo *classroomRepository) listClassrooms(ctx context.Context, filters ...docstore.Filter) ([]classroom.Classroom, error) {
	docs, err := repo.store.List(ctx, colClassrooms, filters...)
	if err != nil {
		return nil, storeError(err, "Could not load the classrooms", nil)
	}
	cs := make([]classroom.Classroom, 0, len(docs))
	for _, doc := range docs {
		c, err := toClassroom(doc)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

func (repo *classroomRepository) ListClassroomsByTeacher(ctx context.Context, teacherEmail string) ([]classroom.Classroom, error) {
	return repo.listClassrooms(ctx, docstore.Filter{Field: "teacherEmail", Value: teacherEmail})
}

// ListClassroomsByStudent scans the roster of every classroom: the store has no collection group queries.
func (repo *classroomRepository) ListClassroomsByStudent(ctx context.Context, email string) ([]classroom.Classroom, error) {
	all, err := repo.listClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	cs := make([]classroom.Classroom, 0)
	for _, c := range all {
		docs, err := repo.store.List(ctx, studentsCol(c.CourseID), docstore.Filter{Field: "email", Value: email})
		if err != nil {
			return nil, storeError(err, "Could not load the rosters", nil)
		}
		if len(docs) > 0 {
			cs = append(cs, c)
		}
	}
	return cs, nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, c classroom.Classroom) error {
	err := repo.store.Merge(ctx, classroomPath(c.CourseID), map[string]interface{}{
		"class_name": c.Name,
		"semester":   c.Semester,
	})
	return storeError(err, "Could not update the classroom", nil)
}

func (repo *classroomRepository) DeleteClassroom(ctx context.Context, courseID string) error {
	return storeError(repo.store.Delete(ctx, classroomPath(courseID)), "Could not delete the classroom", nil)
}

func (repo *classroomRepository) PurgeClassroom(ctx context.Context, courseID string) (int, error) {
	var ops []docstore.Op

	projects, err := repo.store.List(ctx, projectsCol(courseID))
	if err != nil {
		return 0, storeError(err, "Could not load the projects", nil)
	}
	for _, p := range projects {
		teams, err := repo.store.List(ctx, teamsCol(courseID, p.ID))
		if err != nil {
			return 0, storeError(err, "Could not load the teams", nil)
		}
		for _, t := range teams {
			ops = append(ops, docstore.DeleteOp(t.Path))
		}
		ops = append(ops, docstore.DeleteOp(p.Path))
	}

	students, err := repo.store.List(ctx, studentsCol(courseID))
	if err != nil {
		return 0, storeError(err, "Could not load the roster", nil)
	}
	for _, s := range students {
		ops = append(ops, docstore.DeleteOp(s.Path))
	}
	ops = append(ops, docstore.DeleteOp(classroomPath(courseID)))

	if err = commitChunked(ctx, repo.store, ops); err != nil {
		return 0, storeError(err, "Could not purge the classroom", nil)
	}
	return len(ops), nil
}

func (repo *classroomRepository) ListProjectItems(ctx context.Context, courseID string) ([]classroom.ProjectItem, error) {
	docs, err := repo.store.List(ctx, projectsCol(courseID))
	if err != nil {
		return nil, storeError(err, "Could not load the projects", nil)
	}
	items := make([]classroom.ProjectItem, 0, len(docs))
	for _, doc := range docs {
		p, err := toProject(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, classroom.ProjectItem{
			Name:        p.Name,
			Description: p.Description,
			DueDate:     p.DueDate,
			Status:      p.Status,
		})
	}
	return items, nil
}

func (repo *classroomRepository) ListStudents(ctx context.Context, courseID string) ([]classroom.Student, error) {
	docs, err := repo.store.List(ctx, studentsCol(courseID))
	if err != nil {
		return nil, storeError(err, "Could not load the roster", nil)
	}
	students := make([]classroom.Student, 0, len(docs))
	for _, doc := range docs {
		s, err := toStudent(doc)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func (repo *classroomRepository) GetStudent(ctx context.Context, courseID, studentID string) (classroom.Student, error) {
	doc, err := repo.store.Get(ctx, studentPath(courseID, studentID))
	if err != nil {
		return classroom.Student{}, storeError(err, "Could not load the student", classroom.ErrStudentNotFound)
	}
	return toStudent(doc)
}

func (repo *classroomRepository) SaveStudents(ctx context.Context, courseID string, students ...classroom.Student) error {
	ops := make([]docstore.Op, 0, len(students))
	for _, s := range students {
		ops = append(ops, docstore.MergeOp(studentPath(courseID, s.ID), studentData(s)))
	}
	return storeError(commitChunked(ctx, repo.store, ops), "Could not save the roster", nil)
}

func (repo *classroomRepository) ReplaceRoster(ctx context.Context, courseID string, students []classroom.Student) error {
	current, err := repo.store.List(ctx, studentsCol(courseID))
	if err != nil {
		return storeError(err, "Could not load the roster", nil)
	}
	keep := make(map[string]bool, len(students))
	ops := make([]docstore.Op, 0, len(students)+len(current))
	for _, s := range students {
		keep[s.ID] = true
		ops = append(ops, docstore.SetOp(studentPath(courseID, s.ID), studentData(s)))
	}
	for _, doc := range current {
		if !keep[doc.ID] {
			ops = append(ops, docstore.DeleteOp(doc.Path))
		}
	}
	return storeError(commitChunked(ctx, repo.store, ops), "Could not replace the roster", nil)
}

func (repo *classroomRepository) DeleteStudent(ctx context.Context, courseID, studentID string) error {
	ops := []docstore.Op{docstore.DeleteOp(studentPath(courseID, studentID))}

	projects, err := repo.store.List(ctx, projectsCol(courseID))
	if err != nil {
		return storeError(err, "Could not load the projects", nil)
	}
	for _, p := range projects {
		teams, err := repo.store.List(ctx, teamsCol(courseID, p.ID))
		if err != nil {
			return storeError(err, "Could not load the teams", nil)
		}
		for _, t := range teams {
			if _, ok := t.Data[studentID]; !ok {
				continue
			}
			if len(t.Data) == 1 {
				ops = append(ops, docstore.DeleteOp(t.Path))
			} else {
				ops = append(ops, docstore.DeleteFieldsOp(t.Path, studentID))
			}
		}
	}
	return storeError(repo.store.Commit(ctx, ops...), "Could not delete the student", nil)
}
