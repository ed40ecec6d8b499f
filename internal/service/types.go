package service

// Task represents a single to-do item.
// ID is assigned by the remote store and never fabricated by the client.
type Task struct {
	ID   int    `json:"id"`
	Text string `json:"task"`
	Done bool   `json:"isDone"`
}

// User is the signed-in user as returned by the remote store.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Tasks []Task `json:"todos"`
}
