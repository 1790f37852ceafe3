/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StubOptions target stub settings
type StubOptions struct {
	// AdminToken bearer token accepted by admin api
	AdminToken string
	// Sleep added to every response
	Sleep time.Duration
}

type stubTeam struct {
	TeamCode     string           `json:"teamCode"`
	Registration TeamRegistration `json:"registration"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// targetStub in-memory imitation of the registration site
type targetStub struct {
	opts     StubOptions
	validate *validator.Validate
	mu       sync.Mutex
	teams    []stubTeam
	// emails of all registered members
	emails map[string]struct{}
	// team index by lead email
	leads map[string]int
}

// NewTargetStub creates gin engine serving registration site endpoints
func NewTargetStub(opts StubOptions) http.Handler {
	if opts.AdminToken == "" {
		opts.AdminToken = DefaultAdminToken
	}
	s := &targetStub{
		opts:     opts,
		validate: validator.New(),
		emails:   make(map[string]struct{}),
		leads:    make(map[string]int),
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	html := template.Must(template.New("page").Parse(`
<html>
<head>
  <title>{{ .Title }}</title>
</head>
<body>
</body>
</html>
`))
	r.SetHTMLTemplate(html)
	r.Use(s.sleep)
	r.GET("/", s.page("Hackathon"))
	r.GET("/registration", s.page("Registration"))
	r.GET("/dashboard", s.page("Dashboard"))
	r.GET("/admin", s.page("Admin"))
	r.POST("/api/registration", s.register)
	r.POST("/api/contact", s.contact)
	r.GET("/api/team/lead", s.teamLead)
	r.GET("/api/admin/registrations", s.registrations)
	return r
}

// nolint
func RunTargetStub(target string, opts StubOptions) *http.Server {
	srv := &http.Server{
		Addr:    target,
		Handler: NewTargetStub(opts),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Print(err.Error())
		}
	}()
	return srv
}

func (s *targetStub) sleep(c *gin.Context) {
	if s.opts.Sleep > 0 {
		time.Sleep(s.opts.Sleep)
	}
	c.Next()
}

func (s *targetStub) page(title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "page", gin.H{"Title": title})
	}
}

func (s *targetStub) register(c *gin.Context) {
	var reg TeamRegistration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.validate.Struct(reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	leads := 0
	for _, m := range reg.Members {
		if m.IsTeamLead {
			leads++
		}
	}
	if leads != 1 || !reg.Members[0].IsTeamLead {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First member must be the only team lead"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range reg.Members {
		if _, ok := s.emails[m.Email]; ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered: " + m.Email})
			return
		}
	}
	team := stubTeam{
		TeamCode:     strings.ToUpper(uuid.New().String()[:8]),
		Registration: reg,
		CreatedAt:    time.Now(),
	}
	s.teams = append(s.teams, team)
	for _, m := range reg.Members {
		s.emails[m.Email] = struct{}{}
	}
	s.leads[reg.Members[0].Email] = len(s.teams) - 1
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "teamCode": team.TeamCode})
}

func (s *targetStub) contact(c *gin.Context) {
	var msg ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.validate.Struct(msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}

func (s *targetStub) teamLead(c *gin.Context) {
	var q TeamLeadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}
	if err := s.validate.Struct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.leads[q.Email]
	if !ok || s.teams[idx].Registration.Members[0].Phone != q.Phone {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team lead not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teamCode": s.teams[idx].TeamCode, "teamName": s.teams[idx].Registration.TeamName})
}

func (s *targetStub) registrations(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.opts.AdminToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := make([]stubTeam, len(s.teams))
	copy(teams, s.teams)
	c.JSON(http.StatusOK, gin.H{"registrations": teams, "count": len(teams)})
}
