package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nonsonwune/seedgen/importer"
	"github.com/nonsonwune/seedgen/models"
)

// collection is one browsable table of the dataset.
type collection struct {
	list func() any
	find func(key string) (any, bool)
}

func entity[T any](items []T, key func(T) string) collection {
	return collection{
		list: func() any {
			if items == nil {
				return []T{}
			}
			return items
		},
		find: func(k string) (any, bool) {
			for _, item := range items {
				if key(item) == k {
					return item, true
				}
			}
			return nil, false
		},
	}
}

// Server serves a read-only JSON view of one converted dataset.
type Server struct {
	data   *models.Dataset
	report *importer.Report
	logger zerolog.Logger
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router for data and report. mode is a gin mode or the
// config values "development"/"production".
func NewServer(data *models.Dataset, report *importer.Report, mode string, lgr zerolog.Logger) *Server {
	switch mode {
	case "production", gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if data == nil {
		data = &models.Dataset{}
	}
	s := &Server{data: data, report: report, logger: lgr}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) collections() map[string]collection {
	d := s.data
	return map[string]collection{
		"centre":     entity(d.Centres, func(c models.Centre) string { return strconv.Itoa(c.ID) }),
		"department": entity(d.Departments, func(x models.Department) string { return strconv.Itoa(x.ID) }),
		"program":    entity(d.Programs, func(p models.Program) string { return strconv.Itoa(p.ID) }),
		"course":     entity(d.Courses, func(c models.Course) string { return c.Code }),
		"venues":     entity(d.Venues, func(v models.Venue) string { return strconv.Itoa(v.ID) }),
		"staff":      entity(d.Staff, func(st models.Staff) string { return st.StaffID }),
		"student":    entity(d.Students, func(st models.Student) string { return st.MatricNo }),
		"users":      entity(d.Users, func(u models.User) string { return u.StaffID }),
	}
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	// Matric numbers and staff ids contain slashes; clients send them escaped.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))

	router.GET("/ping", func(c *gin.Context) {
		respond(c, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	for name, col := range s.collections() {
		v1.GET("/"+name, listHandler(col))
		v1.GET("/"+name+"/:key", getHandler(name, col))
	}
	v1.GET("/registration", s.listRegistrations)
	v1.GET("/report", s.getReport)

	router.NoRoute(func(c *gin.Context) {
		HandleAPIError(c, fmt.Errorf("%w: %s", ErrNotFound, c.Request.URL.Path))
	})

	return router
}

func listHandler(col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, col.list())
	}
}

func getHandler(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		item, ok := col.find(key)
		if !ok {
			HandleAPIError(c, fmt.Errorf("%w: %s %q", ErrNotFound, name, key))
			return
		}
		respond(c, item)
	}
}

// listRegistrations lists registrations, optionally filtered by matric_no and course_code.
func (s *Server) listRegistrations(c *gin.Context) {
	matric := c.Query("matric_no")
	course := c.Query("course_code")

	out := make([]models.Registration, 0, len(s.data.Registrations))
	for _, r := range s.data.Registrations {
		if matric != "" && r.MatricNo != matric {
			continue
		}
		if course != "" && r.CourseCode != course {
			continue
		}
		out = append(out, r)
	}
	respond(c, out)
}

func (s *Server) getReport(c *gin.Context) {
	if s.report == nil {
		HandleAPIError(c, fmt.Errorf("%w: no report for this dataset", ErrNotFound))
		return
	}
	respond(c, gin.H{
		"run_id":   s.report.RunID,
		"source":   s.report.Source,
		"sections": s.report.Summary(),
		"issues":   s.report.IssuesByCode(),
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("preview server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down preview server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}
