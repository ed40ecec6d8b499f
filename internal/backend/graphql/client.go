// Package graphql implements the service.Service interface against the
// to-do GraphQL API.
package graphql

import (
	"context"
	"fmt"

	"gtodo/internal/credential"
	"gtodo/internal/remote"
	"gtodo/internal/service"
)

var (
	opGetUser = remote.Operation{Name: "GetUser", Query: `query GetUser {
  getUser {
    id
    name
    todos {
      id
      task
      isDone
    }
  }
}`}

	opGetTodo = remote.Operation{Name: "GetTodo", Query: `query GetTodo($id: Int!) {
  getTodoById(id: $id) {
    id
    task
    isDone
  }
}`}

	opCreateTodo = remote.Operation{Name: "CreateTodo", Query: `mutation CreateTodo($task: String!) {
  createTodo(task: $task)
}`}

	opMarkTodo = remote.Operation{Name: "MarkTodo", Query: `mutation MarkTodo($todoId: Int!) {
  markTodo(todoId: $todoId) {
    id
    task
    isDone
  }
}`}

	opUpdateTodo = remote.Operation{Name: "UpdateTodo", Query: `mutation UpdateTodo($id: Int!, $task: String!) {
  updateTodoTask(id: $id, task: $task) {
    id
    task
    isDone
  }
}`}

	opDeleteTodo = remote.Operation{Name: "DeleteTodo", Query: `mutation DeleteTodo($deleteTodoId: Int!) {
  deleteTodo(id: $deleteTodoId)
}`}

	opSignIn = remote.Operation{Name: "SignIn", Query: `mutation SignIn($email: String!, $password: String!) {
  signInUser(email: $email, password: $password) {
    token
  }
}`}

	opSignUp = remote.Operation{Name: "SignUp", Query: `mutation SignUp($name: String!, $email: String!, $password: String!) {
  signUpUser(name: $name, email: $email, password: $password) {
    token
  }
}`}
)

// Executor runs a GraphQL operation. *remote.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, op remote.Operation, vars map[string]any, out any) error
}

// Client implements service.Service.
type Client struct {
	exec Executor
}

// New creates a client that talks to endpoint and reads the credential from store.
func New(endpoint string, store credential.Reader, opts ...remote.Option) *Client {
	return &Client{exec: remote.New(endpoint, store, opts...)}
}

// NewWithExecutor creates a client over an existing executor.
func NewWithExecutor(exec Executor) *Client {
	return &Client{exec: exec}
}

// CurrentUser returns the signed-in user with all tasks in API order.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var out struct {
		GetUser *service.User `json:"getUser"`
	}
	if err := c.exec.Execute(ctx, opGetUser, nil, &out); err != nil {
		return service.User{}, err
	}
	if out.GetUser == nil {
		return service.User{}, fmt.Errorf("%w: no current user", service.ErrAuthentication)
	}
	return *out.GetUser, nil
}

// Task returns a single task.
func (c *Client) Task(ctx context.Context, id int) (service.Task, error) {
	var out struct {
		GetTodoByID *service.Task `json:"getTodoById"`
	}
	if err := c.exec.Execute(ctx, opGetTodo, map[string]any{"id": id}, &out); err != nil {
		return service.Task{}, err
	}
	if out.GetTodoByID == nil {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	return *out.GetTodoByID, nil
}

// CreateTask creates a task and returns its new identifier.
func (c *Client) CreateTask(ctx context.Context, text string) (int, error) {
	var out struct {
		CreateTodo int `json:"createTodo"`
	}
	if err := c.exec.Execute(ctx, opCreateTodo, map[string]any{"task": text}, &out); err != nil {
		return 0, err
	}
	return out.CreateTodo, nil
}

// ToggleTask flips the completion flag.
func (c *Client) ToggleTask(ctx context.Context, id int) (service.Task, error) {
	var out struct {
		MarkTodo *service.Task `json:"markTodo"`
	}
	if err := c.exec.Execute(ctx, opMarkTodo, map[string]any{"todoId": id}, &out); err != nil {
		return service.Task{}, err
	}
	if out.MarkTodo == nil {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	return *out.MarkTodo, nil
}

// RenameTask replaces the text of a task.
func (c *Client) RenameTask(ctx context.Context, id int, text string) (service.Task, error) {
	var out struct {
		UpdateTodoTask *service.Task `json:"updateTodoTask"`
	}
	if err := c.exec.Execute(ctx, opUpdateTodo, map[string]any{"id": id, "task": text}, &out); err != nil {
		return service.Task{}, err
	}
	if out.UpdateTodoTask == nil {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	return *out.UpdateTodoTask, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) (int, error) {
	var out struct {
		DeleteTodo *int `json:"deleteTodo"`
	}
	if err := c.exec.Execute(ctx, opDeleteTodo, map[string]any{"deleteTodoId": id}, &out); err != nil {
		return 0, err
	}
	if out.DeleteTodo == nil {
		return 0, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	return *out.DeleteTodo, nil
}

// SignIn exchanges email and password for a credential.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var out struct {
		SignInUser *struct {
			Token string `json:"token"`
		} `json:"signInUser"`
	}
	vars := map[string]any{"email": email, "password": password}
	if err := c.exec.Execute(ctx, opSignIn, vars, &out); err != nil {
		return "", err
	}
	if out.SignInUser == nil || out.SignInUser.Token == "" {
		return "", fmt.Errorf("%w: sign-in returned no credential", service.ErrRejected)
	}
	return out.SignInUser.Token, nil
}

// SignUp registers a user and returns a credential.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		SignUpUser *struct {
			Token string `json:"token"`
		} `json:"signUpUser"`
	}
	vars := map[string]any{"name": name, "email": email, "password": password}
	if err := c.exec.Execute(ctx, opSignUp, vars, &out); err != nil {
		return "", err
	}
	if out.SignUpUser == nil || out.SignUpUser.Token == "" {
		return "", fmt.Errorf("%w: sign-up returned no credential", service.ErrRejected)
	}
	return out.SignUpUser.Token, nil
}

var _ service.Service = (*Client)(nil)
