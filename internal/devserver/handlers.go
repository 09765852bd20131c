package devserver

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/robby/lostfound/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// envelope is the {success, message, data} wrapper every response uses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Success: false, Message: message})
}

// errorHandler renders errors that escaped a handler, including fiber's own
// 404 and 405, in the envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, fe.Message)
	}
	s.log.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

type registerForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	switch {
	case form.Name == "" || form.Email == "" || form.Password == "":
		return fail(c, fiber.StatusBadRequest, "Name, email and password are required")
	case !validEmail(form.Email):
		return fail(c, fiber.StatusBadRequest, "Email is not valid")
	case len(form.Password) < minPasswordLength:
		return fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return err
	}
	user := userRecord{Name: form.Name, Email: form.Email, PasswordHash: string(hash)}
	if err := s.repo.createUser(c.UserContext(), &user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return fail(c, fiber.StatusConflict, "Email already registered")
		}
		return err
	}
	s.log.Info("user registered", "user", user.ID)
	return ok(c, fiber.StatusCreated, "Registration successful", nil)
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(form.Email) == "" || form.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := s.repo.userByEmail(c.UserContext(), form.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := s.tokens.issue(user)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Login successful", fiber.Map{"token": token})
}

func (s *Server) me(c *fiber.Ctx) error {
	user, err := s.repo.userByID(c.UserContext(), currentUser(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusUnauthorized, "User no longer exists")
		}
		return err
	}
	return ok(c, fiber.StatusOK, "Profile loaded", fiber.Map{"user": user.toJSON()})
}

func (s *Server) listItems(c *fiber.Ctx) error {
	var completed *bool
	switch c.Query("is_completed") {
	case "":
	case "0":
		v := false
		completed = &v
	case "1":
		v := true
		completed = &v
	default:
		return fail(c, fiber.StatusBadRequest, "is_completed must be 0 or 1")
	}

	records, err := s.repo.listItems(c.UserContext(), completed)
	if err != nil {
		return err
	}
	items := make([]itemJSON, 0, len(records))
	for _, r := range records {
		items = append(items, r.toJSON())
	}
	return ok(c, fiber.StatusOK, "Items loaded", fiber.Map{"lost_founds": items})
}

func (s *Server) getItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	it, err := s.repo.itemByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Item not found")
		}
		return err
	}
	return ok(c, fiber.StatusOK, "Item loaded", fiber.Map{"lost_found": it.toJSON()})
}

type itemForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`
	IsCompleted string `form:"is_completed"`
}

// fields validates the form. withCompletion requires the is_completed flag.
func (f itemForm) fields(withCompletion bool) (itemFields, string) {
	out := itemFields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
	}
	if out.Title == "" || out.Description == "" {
		return out, "Title and description are required"
	}
	status, known := domain.ParseStatus(f.Status)
	if !known {
		return out, "Status must be lost or found"
	}
	out.Status = status
	if withCompletion {
		switch f.IsCompleted {
		case "0":
		case "1":
			out.Completed = true
		default:
			return out, "is_completed must be 0 or 1"
		}
	}
	return out, ""
}

func (s *Server) createItem(c *fiber.Ctx) error {
	var form itemForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fields, problem := form.fields(false)
	if problem != "" {
		return fail(c, fiber.StatusBadRequest, problem)
	}

	it := itemRecord{
		UserID:      currentUser(c),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      string(fields.Status),
	}
	if err := s.repo.createItem(c.UserContext(), &it); err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "Item created", fiber.Map{"lost_found_id": it.ID})
}

func (s *Server) updateItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	var form itemForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fields, problem := form.fields(true)
	if problem != "" {
		return fail(c, fiber.StatusBadRequest, problem)
	}
	if err := s.ownItem(c, id); err != nil {
		return err
	}

	if err := s.repo.updateItem(c.UserContext(), id, fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Item not found")
		}
		return err
	}
	return ok(c, fiber.StatusOK, "Item updated", nil)
}

func (s *Server) deleteItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := s.ownItem(c, id); err != nil {
		return err
	}
	if err := s.repo.deleteItem(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Item not found")
		}
		return err
	}
	return ok(c, fiber.StatusOK, "Item deleted", nil)
}

// ownItem fails the request unless item id exists and belongs to the caller.
func (s *Server) ownItem(c *fiber.Ctx, id uint) error {
	it, err := s.repo.itemByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		return err
	}
	if it.UserID != currentUser(c) {
		return fiber.NewError(fiber.StatusForbidden, "You can only change your own items")
	}
	return nil
}

func itemID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Item id must be a positive number")
	}
	return uint(id), nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
