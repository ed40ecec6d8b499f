package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"pkt.systems/pslog"

	"gtodo/internal/credential"
	"gtodo/internal/editintent"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

const cookieMaxAge = 7 * 24 * 60 * 60

// listView is the body of the list page.
type listView struct {
	User  string         `json:"user"`
	Tasks []service.Task `json:"tasks"`
}

// requestStore reads the credential cookie into a per-request store.
func requestStore(c *gin.Context) *credential.Memory {
	token, err := c.Cookie(guard.CookieName)
	if err != nil {
		token = ""
	}
	return credential.NewMemory(token)
}

func (s *Server) setCredential(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guard.CookieName, token, cookieMaxAge, "/", "", s.secure, true)
}

func (s *Server) clearCredential(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guard.CookieName, "", -1, "/", "", s.secure, true)
}

// Public pages

func (s *Server) handlePublicPage(c *gin.Context) {
	outcome := session.Bootstrap(c.Request.URL.Path, requestStore(c))
	if outcome.Kind == session.Redirect {
		c.Redirect(http.StatusFound, outcome.Target)
		return
	}

	page := gin.H{"page": c.Request.URL.Path}
	switch c.Request.URL.Path {
	case guard.SignInPath:
		page["fields"] = []string{"email", "password"}
	case guard.SignUpPath:
		page["fields"] = []string{"name", "email", "password"}
	default:
		page["links"] = []string{guard.SignInPath, guard.SignUpPath}
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleSignIn(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	token, err := s.services(credential.NewMemory("")).SignIn(c.Request.Context(), email, password)
	if err != nil {
		s.signInFailed(c, err)
		return
	}
	s.setCredential(c, token)
	c.Redirect(http.StatusSeeOther, guard.ListPath)
}

func (s *Server) handleSignUp(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if name == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password required"})
		return
	}

	token, err := s.services(credential.NewMemory("")).SignUp(c.Request.Context(), name, email, password)
	if err != nil {
		s.signInFailed(c, err)
		return
	}
	s.setCredential(c, token)
	c.Redirect(http.StatusSeeOther, guard.ListPath)
}

func (s *Server) signInFailed(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTransport) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "service unavailable, try again"})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}

// Protected pages

// open bootstraps the protected page and starts its synchronizer. It
// writes the response and returns nil when the page cannot proceed.
func (s *Server) open(c *gin.Context) *tasklist.Synchronizer {
	store := requestStore(c)
	outcome := session.Bootstrap(c.Request.URL.Path, store)
	if outcome.Kind == session.Redirect {
		c.Redirect(http.StatusFound, outcome.Target)
		return nil
	}

	list := tasklist.New(s.services(store), store)
	if err := list.Start(c.Request.Context(), outcome); err != nil {
		s.fail(c, err)
		return nil
	}
	return list
}

func (s *Server) handleList(c *gin.Context) {
	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()
	c.JSON(http.StatusOK, view(list))
}

func (s *Server) handleCreate(c *gin.Context) {
	text := c.PostForm("task")
	// Validated before the page opens so an empty submit costs no round-trip.
	if err := tasklist.ValidateText(text); err != nil {
		s.fail(c, err)
		return
	}

	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()
	if err := list.Create(c.Request.Context(), text); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(list))
}

func (s *Server) handleToggle(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()
	if err := list.Toggle(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(list))
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()
	if err := list.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(list))
}

// handleTask is the single-task edit view.
func (s *Server) handleTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()

	task, err := editintent.New(list).BeginFromRemote(c.Request.Context(), editintent.LoaderFunc(list.Lookup), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// handleRename commits the single-task edit view and returns to the list.
func (s *Server) handleRename(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	text := c.PostForm("task")
	if err := tasklist.ValidateText(text); err != nil {
		s.fail(c, err)
		return
	}

	list := s.open(c)
	if list == nil {
		return
	}
	defer list.Close()

	edits := editintent.New(list)
	if _, err := edits.BeginFromRemote(c.Request.Context(), editintent.LoaderFunc(list.Lookup), id); err != nil {
		s.fail(c, err)
		return
	}
	edits.UpdateDraft(text)
	if err := edits.Commit(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, guard.ListPath)
}

func (s *Server) handleLogout(c *gin.Context) {
	s.clearCredential(c)
	pslog.Ctx(c.Request.Context()).Info("signed out")
	c.Redirect(http.StatusSeeOther, guard.SignInPath)
}

// taskID parses the :id segment. A non-numeric id sends the visitor back to
// the list.
func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.Redirect(http.StatusFound, guard.ListPath)
		return 0, false
	}
	return id, true
}

// fail maps err to a response. Authentication failures end the session.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tasklist.ErrUnauthenticated),
		errors.Is(err, tasklist.ErrNotConfirmed),
		errors.Is(err, service.ErrAuthentication):
		s.clearCredential(c)
		c.Redirect(http.StatusFound, guard.SignInPath)
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "task cannot be empty"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		pslog.Ctx(c.Request.Context()).Warn("remote call failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "service unavailable, try again"})
	}
}

func view(list *tasklist.Synchronizer) listView {
	return listView{User: list.UserName(), Tasks: list.Tasks()}
}
