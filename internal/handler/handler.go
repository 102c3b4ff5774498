package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snapcheck/internal/attendance"
	"snapcheck/internal/auth"
	"snapcheck/internal/cloudinary"
	"snapcheck/internal/student"
)

// Students is the account surface the handlers need.
type Students interface {
	Register(ctx context.Context, email, password string) (student.Student, error)
	Authenticate(ctx context.Context, email, password string) (student.Student, error)
	Get(ctx context.Context, id string) (*student.Student, error)
}

// Records is the check-in persistence surface.
type Records interface {
	Insert(ctx context.Context, rec attendance.Record) (attendance.Record, error)
	ListByUser(ctx context.Context, userID string) ([]attendance.Record, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Locator resolves the capture location, degrading to placeholder strings.
type Locator interface {
	Resolve(ctx context.Context) string
}

// ImageStore uploads and deletes watermarked photos.
type ImageStore interface {
	UploadWithWatermark(data []byte, filename, watermarkText string) (*cloudinary.UploadResult, error)
	Destroy(publicID string) error
}

// Handler carries the request handlers for the REST surface.
type Handler struct {
	students Students
	records  Records
	geo      Locator
	images   ImageStore // nil when Cloudinary is not configured

	issuer      string
	signingKey  string
	registerTTL time.Duration
	signInTTL   time.Duration
	tz          *time.Location

	// Now is the capture clock; overridable in tests.
	Now func() time.Time
}

// New creates a handler.
func New(students Students, records Records, geo Locator, images ImageStore, issuer, signingKey string, registerTTL, signInTTL time.Duration, tz *time.Location) *Handler {
	return &Handler{
		students:    students,
		records:     records,
		geo:         geo,
		images:      images,
		issuer:      issuer,
		signingKey:  signingKey,
		registerTTL: registerTTL,
		signInTTL:   signInTTL,
		tz:          tz,
		Now:         time.Now,
	}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp registers an account and hands back a short-lived token.
func (h *Handler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.students.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, student.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, err)
		return
	}

	token, _, err := auth.Issue(st.ID, st.Email, h.issuer, h.signingKey, h.registerTTL)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "ACCOUNT CREATED SUCCESSFULLY",
		"data":    st,
		"token":   token,
	})
}

// SignIn verifies credentials and hands back a long-lived token.
func (h *Handler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.students.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, student.ErrNoAccount):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, student.ErrBadPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}

	token, _, err := auth.Issue(st.ID, st.Email, h.issuer, h.signingKey, h.signInTTL)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "successfully logged in",
		"data":    token,
	})
}

// UploadImage records a check-in for the authenticated caller: capture
// time/date in the configured timezone, punctuality mark, resolved location,
// and optionally the watermarked photo.
func (h *Handler) UploadImage(c *gin.Context) {
	claimsAny, _ := c.Get("claims")
	claims, ok := claimsAny.(auth.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ctx := c.Request.Context()
	st, err := h.students.Get(ctx, claims.UserID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := h.Now().In(h.tz)
	date, clock := attendance.Capture(now)
	mark := attendance.Score(clock)
	location := h.geo.Resolve(ctx)

	// The photo is optional: a check-in without one still records time,
	// location and mark.
	var imageURL *string
	if file, header, ferr := c.Request.FormFile("profileImage"); ferr == nil {
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			h.internalError(c, rerr)
			return
		}
		if h.images == nil {
			log.Printf("image storage not configured, storing check-in without photo")
		} else {
			watermark := fmt.Sprintf("TIME: %s\nDATE: %s\nLOC: %s", clock, date, location)
			result, uerr := h.images.UploadWithWatermark(data, header.Filename, watermark)
			if uerr != nil {
				h.internalError(c, uerr)
				return
			}
			imageURL = &result.SecureURL
		}
	}

	rec, err := h.records.Insert(ctx, attendance.Record{
		UserID:   claims.UserID,
		ImageURL: imageURL,
		Date:     date,
		Time:     clock,
		Location: location,
		Mark:     mark,
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "image uploaded",
		"details": rec,
	})
}

// GetImages lists a student's check-ins. The :ID parameter is trusted as-is;
// there is no ownership check on this endpoint.
func (h *Handler) GetImages(c *gin.Context) {
	id := c.Param("ID")
	records, err := h.records.ListByUser(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No image uploaded yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Here are the %d images for this student", len(records)),
		"details": attendance.Summarize(records),
	})
}

// DeleteImages removes every check-in for a student, best-effort deleting the
// hosted photo of each record that has one first.
func (h *Handler) DeleteImages(c *gin.Context) {
	id := c.Param("ID")
	ctx := c.Request.Context()
	records, err := h.records.ListByUser(ctx, id)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image already deleted"})
		return
	}

	if h.images != nil {
		for _, rec := range records {
			if rec.ImageURL == nil {
				continue
			}
			if derr := h.images.Destroy(cloudinary.PublicIDFromURL(*rec.ImageURL)); derr != nil {
				log.Printf("cloudinary destroy failed for record %s: %v", rec.ID, derr)
			}
		}
	}

	if _, err := h.records.DeleteByUser(ctx, id); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "image deleted successfully"})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error: " + err.Error()})
}
