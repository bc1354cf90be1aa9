package hr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

type relationalState struct {
	employees   map[int64]*employee.Employee
	projects    map[int64]*project.Project
	assignments map[int64]*assignment.Assignment
}

func newRelationalState() *relationalState {
	return &relationalState{
		employees:   make(map[int64]*employee.Employee),
		projects:    make(map[int64]*project.Project),
		assignments: make(map[int64]*assignment.Assignment),
	}
}

func (s *relationalState) assign(id, employeeID, projectID int64) {
	s.assignments[id] = &assignment.Assignment{ID: id, EmployeeID: employeeID, ProjectID: projectID, Role: "Member"}
}

type fakeEmployeeStore struct{ *relationalState }

func (f fakeEmployeeStore) FindByID(_ context.Context, id int64) (*employee.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f fakeEmployeeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	for _, a := range f.assignments {
		if a.EmployeeID == id {
			return employee.ErrHasDependents
		}
	}
	delete(f.employees, id)
	return nil
}

type fakeProjectStore struct{ *relationalState }

func (f fakeProjectStore) FindByID(_ context.Context, id int64) (*project.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, project.ErrProjectNotFound
}

func (f fakeProjectStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return project.ErrProjectNotFound
	}
	for _, a := range f.assignments {
		if a.ProjectID == id {
			return project.ErrHasDependents
		}
	}
	delete(f.projects, id)
	return nil
}

type fakeAssignmentStore struct{ *relationalState }

func (f fakeAssignmentStore) count(match func(*assignment.Assignment) bool) int {
	n := 0
	for _, a := range f.assignments {
		if match(a) {
			n++
		}
	}
	return n
}

func (f fakeAssignmentStore) remove(match func(*assignment.Assignment) bool) int {
	n := 0
	for id, a := range f.assignments {
		if match(a) {
			delete(f.assignments, id)
			n++
		}
	}
	return n
}

func (f fakeAssignmentStore) CountByEmployee(_ context.Context, id int64) (int, error) {
	return f.count(func(a *assignment.Assignment) bool { return a.EmployeeID == id }), nil
}

func (f fakeAssignmentStore) CountByProject(_ context.Context, id int64) (int, error) {
	return f.count(func(a *assignment.Assignment) bool { return a.ProjectID == id }), nil
}

func (f fakeAssignmentStore) DeleteByEmployee(_ context.Context, id int64) (int, error) {
	return f.remove(func(a *assignment.Assignment) bool { return a.EmployeeID == id }), nil
}

func (f fakeAssignmentStore) DeleteByProject(_ context.Context, id int64) (int, error) {
	return f.remove(func(a *assignment.Assignment) bool { return a.ProjectID == id }), nil
}

type fakeReviewStore struct {
	reviews     []*review.Review
	deleteError error
}

func (f *fakeReviewStore) Create(_ context.Context, rv *review.Review) (*review.Review, error) {
	clone := *rv
	clone.ID = fmt.Sprintf("rv-%d", len(f.reviews)+1)
	f.reviews = append(f.reviews, &clone)
	return &clone, nil
}

func (f *fakeReviewStore) CountByEmployee(_ context.Context, id int64) (int, error) {
	n := 0
	for _, rv := range f.reviews {
		if rv.EmployeeID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeReviewStore) DeleteByEmployee(_ context.Context, id int64) (int, error) {
	if f.deleteError != nil {
		return 0, f.deleteError
	}
	kept := f.reviews[:0]
	removed := 0
	for _, rv := range f.reviews {
		if rv.EmployeeID == id {
			removed++
			continue
		}
		kept = append(kept, rv)
	}
	f.reviews = kept
	return removed, nil
}

type recordingTx struct {
	readWrite int
}

func (r *recordingTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (r *recordingTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	r.readWrite++
	return fn(ctx)
}

type fixture struct {
	state   *relationalState
	reviews *fakeReviewStore
	tx      *recordingTx
	svc     *Service
}

func newFixture() *fixture {
	state := newRelationalState()
	state.employees[1] = &employee.Employee{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	state.employees[2] = &employee.Employee{ID: 2, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}
	state.projects[10] = &project.Project{ID: 10, Name: "Engine", Status: project.StatusActive}
	state.projects[11] = &project.Project{ID: 11, Name: "Bombe", Status: project.StatusPlanning}

	reviews := &fakeReviewStore{}
	tx := &recordingTx{}
	svc := NewService(Stores{
		Employees:   fakeEmployeeStore{state},
		Projects:    fakeProjectStore{state},
		Assignments: fakeAssignmentStore{state},
		Reviews:     reviews,
	}, tx, nil)

	return &fixture{state: state, reviews: reviews, tx: tx, svc: svc}
}

func (f *fixture) seedReview(t *testing.T, employeeID int64, rating float64) {
	t.Helper()
	_, err := f.reviews.Create(context.Background(), &review.Review{EmployeeID: employeeID, OverallRating: rating})
	require.NoError(t, err)
}

func validReviewInput(employeeID int64) review.SubmitReviewInput {
	return review.SubmitReviewInput{
		EmployeeID:    employeeID,
		ReviewDate:    "2025-04-01",
		ReviewerName:  "Grace",
		OverallRating: 4,
		Strengths:     []string{"Focus"},
	}
}

func TestService_SubmitReview_ChecksEmployee(t *testing.T) {
	t.Parallel()

	f := newFixture()

	created, err := f.svc.SubmitReview(context.Background(), validReviewInput(1))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(1), created.EmployeeID)
	assert.Len(t, f.reviews.reviews, 1)
}

func TestService_SubmitReview_DanglingEmployeeWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.SubmitReview(context.Background(), validReviewInput(99))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDanglingReference)
	assert.True(t, apperr.Resolvable(err))
	assert.Empty(t, f.reviews.reviews)
}

func TestService_SubmitReview_ValidationBeforeLookup(t *testing.T) {
	t.Parallel()

	f := newFixture()

	in := validReviewInput(99)
	in.OverallRating = 6
	_, err := f.svc.SubmitReview(context.Background(), in)
	assert.ErrorIs(t, err, review.ErrInvalidRating)
	assert.Empty(t, f.reviews.reviews)
}

func TestService_DeleteEmployee_NonCascadeWithDependents(t *testing.T) {
	t.Parallel()

	t.Run("assignments", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.state.assign(100, 1, 10)

		_, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1})
		assert.ErrorIs(t, err, apperr.ErrHasDependents)
		assert.Contains(t, f.state.employees, int64(1))
	})

	t.Run("reviews only", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedReview(t, 1, 3)

		_, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1})
		assert.ErrorIs(t, err, employee.ErrHasDependents)
		assert.Contains(t, f.state.employees, int64(1))
	})
}

func TestService_DeleteEmployee_NoDependents(t *testing.T) {
	t.Parallel()

	f := newFixture()

	result, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, &DeleteEmployeeResult{EmployeeID: 2}, result)
	assert.NotContains(t, f.state.employees, int64(2))

	_, err = f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 2})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_DeleteEmployee_CascadeRetainsReviews(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.state.assign(100, 1, 10)
	f.state.assign(101, 1, 11)
	f.state.assign(102, 2, 10)
	f.seedReview(t, 1, 3)
	f.seedReview(t, 1, 5)

	result, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1, Cascade: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RemovedAssignments)
	assert.Equal(t, 0, result.RemovedReviews)
	assert.Equal(t, 2, result.RetainedReviews)
	assert.NotContains(t, f.state.employees, int64(1))
	assert.Len(t, f.state.assignments, 1)
	assert.Len(t, f.reviews.reviews, 2)
	assert.Equal(t, 1, f.tx.readWrite)
}

func TestService_DeleteEmployee_CascadePurgesReviews(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.state.assign(100, 1, 10)
	f.seedReview(t, 1, 3)
	f.seedReview(t, 2, 4)

	result, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1, Cascade: true, PurgeReviews: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.RemovedAssignments)
	assert.Equal(t, 1, result.RemovedReviews)
	assert.Equal(t, 0, result.RetainedReviews)
	require.Len(t, f.reviews.reviews, 1)
	assert.Equal(t, int64(2), f.reviews.reviews[0].EmployeeID)
}

func TestService_DeleteEmployee_PurgeFailureReportsStep(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.state.assign(100, 1, 10)
	f.seedReview(t, 1, 3)
	f.reviews.deleteError = fmt.Errorf("delete reviews: %w", review.ErrUnavailable)

	_, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1, Cascade: true, PurgeReviews: true})
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, stepPurgeReviews, stepErr.Step)
	assert.Equal(t, []string{stepDeleteAssignments, stepDeleteEmployee}, stepErr.Completed)
	assert.True(t, apperr.Retryable(err))

	assert.NotContains(t, f.state.employees, int64(1))
	assert.Empty(t, f.state.assignments)
	assert.Len(t, f.reviews.reviews, 1)
}

func TestService_DeleteEmployee_PurgeWithoutCascade(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1, PurgeReviews: true})
	assert.ErrorIs(t, err, ErrPurgeRequiresCascade)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, f.state.employees, int64(1))
}

func TestService_DeleteEmployee_DegradedReviewsRefuseUnverifiedDelete(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.svc.stores.ReviewsDegraded = true

	for _, in := range []DeleteEmployeeInput{
		{ID: 1},
		{ID: 1, Cascade: true, PurgeReviews: true},
	} {
		_, err := f.svc.DeleteEmployee(context.Background(), in)
		require.ErrorIs(t, err, ErrReviewsUnverifiable)
		assert.True(t, apperr.Retryable(err))
	}
	assert.Contains(t, f.state.employees, int64(1))
	assert.Zero(t, f.tx.readWrite)

	result, err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 1, Cascade: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.EmployeeID)
	assert.NotContains(t, f.state.employees, int64(1))
}

func TestService_DeleteProject(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.state.assign(100, 1, 10)
	f.state.assign(101, 2, 10)
	f.state.assign(102, 2, 11)

	_, err := f.svc.DeleteProject(context.Background(), DeleteProjectInput{ID: 10})
	assert.ErrorIs(t, err, project.ErrHasDependents)
	assert.Contains(t, f.state.projects, int64(10))

	result, err := f.svc.DeleteProject(context.Background(), DeleteProjectInput{ID: 10, Cascade: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RemovedAssignments)
	assert.NotContains(t, f.state.projects, int64(10))
	assert.Len(t, f.state.assignments, 1)

	_, err = f.svc.DeleteProject(context.Background(), DeleteProjectInput{ID: 10, Cascade: true})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.DeleteProject(context.Background(), DeleteProjectInput{})
	assert.ErrorIs(t, err, ErrInvalidProjectID)
}
