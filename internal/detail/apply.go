package detail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResumeExtensions are the accepted resume file types.
var ResumeExtensions = []string{".pdf", ".doc", ".docx"}

// Resume references the uploaded file; its bytes are not kept.
type Resume struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// Application is one submission of the apply form.
type Application struct {
	JobID      string    `json:"jobId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Experience int       `json:"experience"`
	Resume     Resume    `json:"resume"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// ApplicationForm is the raw form as posted by the browser.
type ApplicationForm struct {
	Name       string
	Email      string
	Phone      string
	Experience string
	Resume     *Resume
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid form: %s", strings.Join(keys, ", "))
}

// Validate checks every required field and returns the parsed Application.
func (f ApplicationForm) Validate(jobID string) (*Application, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	phone := strings.TrimSpace(f.Phone)

	if name == "" {
		fields["name"] = "name is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "invalid email"
	}
	if phone == "" {
		fields["phone"] = "phone is required"
	}
	years, err := strconv.Atoi(strings.TrimSpace(f.Experience))
	switch {
	case strings.TrimSpace(f.Experience) == "":
		fields["experience"] = "experience is required"
	case err != nil || years < 0:
		fields["experience"] = "experience must be a non-negative number"
	}
	if f.Resume == nil || f.Resume.Filename == "" {
		fields["resume"] = "resume is required"
	} else if !acceptedResume(f.Resume.Filename) {
		fields["resume"] = "resume must be .pdf, .doc or .docx"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &Application{
		JobID:      jobID,
		Name:       name,
		Email:      email,
		Phone:      phone,
		Experience: years,
		Resume:     *f.Resume,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func acceptedResume(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range ResumeExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Submitter receives validated applications. No backend contract exists for
// applications, so implementations never report delivery to the applicant.
type Submitter interface {
	Submit(ctx context.Context, app Application) error
}

// DiscardSubmitter accepts and drops applications after logging receipt.
type DiscardSubmitter struct{}

func (DiscardSubmitter) Submit(_ context.Context, app Application) error {
	slog.Info("application received", "jobId", app.JobID, "resume", app.Resume.Filename)
	return nil
}

// RedisSubmitter publishes each application on a Redis channel.
type RedisSubmitter struct {
	rdb     *redis.Client
	channel string
}

// NewRedisSubmitter returns nil when rdb is nil so callers can fall back.
func NewRedisSubmitter(rdb *redis.Client, channel string) *RedisSubmitter {
	if rdb == nil {
		return nil
	}
	return &RedisSubmitter{rdb: rdb, channel: channel}
}

func (s *RedisSubmitter) Submit(ctx context.Context, app Application) error {
	event, err := json.Marshal(map[string]any{
		"type":        "EVENT_APPLICATION_SUBMITTED",
		"application": app,
	})
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	if err := s.rdb.Publish(ctx, s.channel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", s.channel, err)
	}
	return nil
}
