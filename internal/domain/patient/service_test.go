package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{Name: "John Doe", Age: 42, Gender: "Male"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Patient{Age: 42, Gender: "Male"})
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreatePatient_InvalidGender(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Patient{Name: "John Doe", Age: 42, Gender: "X"})
	if err == nil {
		t.Error("expected error for invalid gender")
	}
}

func TestCreatePatient_InvalidAge(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Patient{Name: "John Doe", Age: -1, Gender: "Male"})
	if err == nil {
		t.Error("expected error for negative age")
	}
}

func TestUpdatePatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{Name: "John Doe", Age: 42, Gender: "Male"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Age = 43
	if err := svc.Update(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Age != 43 {
		t.Errorf("expected age 43, got %d", got.Age)
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchByName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	for _, name := range []string{"John Doe", "Jane Doe", "Alice Smith"} {
		if err := svc.Create(context.Background(), &Patient{Name: name, Age: 30, Gender: "Female"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items, total, err := svc.SearchByName(context.Background(), "doe", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 matches, got %d", total)
	}
}
