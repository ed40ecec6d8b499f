// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gtodo/internal/credential"
	"gtodo/internal/service"
)

// DefaultToken is the credential FakeService issues and accepts.
const DefaultToken = "fake-token"

type fakeUser struct {
	name     string
	password string
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int
	users  map[string]fakeUser // email -> user
	calls  map[string]int

	// Name is the user name returned by CurrentUser.
	Name string

	// Token is the only credential accepted when Creds is set.
	Token string

	// Creds, when set, is consulted on every authenticated call the way the
	// real API checks the authorization header.
	Creds credential.Reader

	// BeforeCall, when set, runs at the start of every call with the method name.
	BeforeCall func(method string)

	// Error injection for testing
	CurrentUserErr error
	TaskErr        error
	CreateTaskErr  error
	ToggleTaskErr  error
	RenameTaskErr  error
	DeleteTaskErr  error
	SignInErr      error
	SignUpErr      error
}

// NewFakeService creates a new FakeService with an empty task list.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		users:  make(map[string]fakeUser),
		calls:  make(map[string]int),
		Name:   "Tester",
		Token:  DefaultToken,
	}
}

// AddTask adds a task and returns its identifier.
func (f *FakeService) AddTask(text string, done bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.tasks = append(f.tasks, service.Task{ID: id, Text: text, Done: done})
	return id
}

// AddUser registers a user for SignIn.
func (f *FakeService) AddUser(name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{name: name, password: password}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeService) enter(method string) {
	f.mu.Lock()
	f.calls[method]++
	hook := f.BeforeCall
	f.mu.Unlock()
	if hook != nil {
		hook(method)
	}
}

func (f *FakeService) authenticate() error {
	if f.Creds == nil {
		return nil
	}
	token, ok := f.Creds.Get()
	if !ok || token != f.Token {
		return fmt.Errorf("%w: invalid token", service.ErrAuthentication)
	}
	return nil
}

func (f *FakeService) indexOf(id int) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func validText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: task cannot be empty", service.ErrValidation)
	}
	return nil
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	f.enter("CurrentUser")
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	if err := f.authenticate(); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]service.Task, len(f.tasks))
	copy(tasks, f.tasks)
	return service.User{ID: 1, Name: f.Name, Tasks: tasks}, nil
}

// Task implements service.Service.
func (f *FakeService) Task(ctx context.Context, id int) (service.Task, error) {
	f.enter("Task")
	if f.TaskErr != nil {
		return service.Task{}, f.TaskErr
	}
	if err := f.authenticate(); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: todo %d", service.ErrNotFound, id)
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, text string) (int, error) {
	f.enter("CreateTask")
	if f.CreateTaskErr != nil {
		return 0, f.CreateTaskErr
	}
	if err := f.authenticate(); err != nil {
		return 0, err
	}
	if err := validText(text); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.tasks = append(f.tasks, service.Task{ID: id, Text: text})
	return id, nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id int) (service.Task, error) {
	f.enter("ToggleTask")
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	if err := f.authenticate(); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: todo %d", service.ErrNotFound, id)
	}
	f.tasks[i].Done = !f.tasks[i].Done
	return f.tasks[i], nil
}

// RenameTask implements service.Service.
func (f *FakeService) RenameTask(ctx context.Context, id int, text string) (service.Task, error) {
	f.enter("RenameTask")
	if f.RenameTaskErr != nil {
		return service.Task{}, f.RenameTaskErr
	}
	if err := f.authenticate(); err != nil {
		return service.Task{}, err
	}
	if err := validText(text); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: todo %d", service.ErrNotFound, id)
	}
	f.tasks[i].Text = text
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) (int, error) {
	f.enter("DeleteTask")
	if f.DeleteTaskErr != nil {
		return 0, f.DeleteTaskErr
	}
	if err := f.authenticate(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: todo %d", service.ErrNotFound, id)
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return id, nil
}

// SignIn implements service.Service.
func (f *FakeService) SignIn(ctx context.Context, email, password string) (string, error) {
	f.enter("SignIn")
	if f.SignInErr != nil {
		return "", f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.password != password {
		return "", fmt.Errorf("%w: invalid email or password", service.ErrRejected)
	}
	return f.Token, nil
}

// SignUp implements service.Service.
func (f *FakeService) SignUp(ctx context.Context, name, email, password string) (string, error) {
	f.enter("SignUp")
	if f.SignUpErr != nil {
		return "", f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[email]; exists {
		return "", fmt.Errorf("%w: email already registered", service.ErrRejected)
	}
	f.users[email] = fakeUser{name: name, password: password}
	f.Name = name
	return f.Token, nil
}

var _ service.Service = (*FakeService)(nil)
