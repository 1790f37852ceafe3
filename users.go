package hackload

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	StandardUserClass = "standard"
	AdminUserClass    = "admin"
)

func init() {
	RegisterUser(StandardUserClass, &StandardUser{})
	RegisterUser(AdminUserClass, &AdminUser{})
}

// StandardUser browses the site, registers teams and sends contact forms
type StandardUser struct {
	*Runner
	id       int
	rand     Rand
	behavior Behavior
}

func (u *StandardUser) Clone(r *Runner, id int) User {
	return &StandardUser{Runner: r, id: id}
}

func (u *StandardUser) Setup(c RunnerConfig) error {
	u.rand = NewRand()
	u.behavior = Behavior{
		MinWait: 1 * time.Second,
		MaxWait: 3 * time.Second,
		Tasks: []WeightedTask{
			{Name: "view_homepage", Weight: 3, Fn: u.ViewHomepage},
			{Name: "view_registration_page", Weight: 2, Fn: u.ViewRegistrationPage},
			{Name: "submit_registration", Weight: 1, Fn: u.SubmitRegistration},
			{Name: "submit_contact_form", Weight: 1, Fn: u.SubmitContactForm},
			{Name: "check_team_lead_status", Weight: 1, Fn: u.CheckTeamLeadStatus},
			{Name: "view_dashboard", Weight: 1, Fn: u.ViewDashboard},
		},
	}
	if w, ok := c.Wait[StandardUserClass]; ok {
		u.behavior = u.behavior.WithWait(w)
	}
	return nil
}

func (u *StandardUser) OnStart(_ context.Context) {
	u.L.With("user", u.id).Infof("Starting user simulation...")
}

func (u *StandardUser) Behavior() Behavior {
	return u.behavior
}

func (u *StandardUser) Teardown() error {
	return nil
}

func (u *StandardUser) ViewHomepage(ctx context.Context) DoResult {
	return u.Send(ctx, "view_homepage", &Request{Method: http.MethodGet, Path: "/"}, DefaultClassify)
}

func (u *StandardUser) ViewRegistrationPage(ctx context.Context) DoResult {
	return u.Send(ctx, "view_registration_page", &Request{Method: http.MethodGet, Path: "/registration"}, DefaultClassify)
}

func (u *StandardUser) SubmitRegistration(ctx context.Context) DoResult {
	req, err := JSONRequest(http.MethodPost, "/api/registration", NewTeamRegistration(u.rand))
	if err != nil {
		return DoResult{RequestLabel: "submit_registration", Error: err.Error()}
	}
	return u.Send(ctx, "submit_registration", req, ClassifyRegistration)
}

func (u *StandardUser) SubmitContactForm(ctx context.Context) DoResult {
	req, err := JSONRequest(http.MethodPost, "/api/contact", NewContactMessage(u.rand))
	if err != nil {
		return DoResult{RequestLabel: "submit_contact_form", Error: err.Error()}
	}
	return u.Send(ctx, "submit_contact_form", req, ClassifyContact)
}

func (u *StandardUser) CheckTeamLeadStatus(ctx context.Context) DoResult {
	q := NewTeamLeadQuery(u.rand)
	return u.Send(ctx, "check_team_lead_status", &Request{
		Method: http.MethodGet,
		Path:   "/api/team/lead",
		Query:  url.Values{"email": {q.Email}, "phone": {q.Phone}},
	}, DefaultClassify)
}

func (u *StandardUser) ViewDashboard(ctx context.Context) DoResult {
	return u.Send(ctx, "view_dashboard", &Request{Method: http.MethodGet, Path: "/dashboard"}, DefaultClassify)
}

// AdminUser visits admin dashboard and lists registrations
type AdminUser struct {
	*Runner
	id       int
	token    string
	behavior Behavior
}

func (u *AdminUser) Clone(r *Runner, id int) User {
	return &AdminUser{Runner: r, id: id}
}

func (u *AdminUser) Setup(c RunnerConfig) error {
	u.token = c.AdminToken
	if u.token == "" {
		u.token = DefaultAdminToken
	}
	u.behavior = Behavior{
		MinWait: 2 * time.Second,
		MaxWait: 5 * time.Second,
		Tasks: []WeightedTask{
			{Name: "view_admin_page", Weight: 1, Fn: u.ViewAdminPage},
			{Name: "get_registrations", Weight: 1, Fn: u.GetRegistrations},
		},
	}
	if w, ok := c.Wait[AdminUserClass]; ok {
		u.behavior = u.behavior.WithWait(w)
	}
	return nil
}

func (u *AdminUser) OnStart(_ context.Context) {}

func (u *AdminUser) Behavior() Behavior {
	return u.behavior
}

func (u *AdminUser) Teardown() error {
	return nil
}

func (u *AdminUser) ViewAdminPage(ctx context.Context) DoResult {
	return u.Send(ctx, "view_admin_page", &Request{Method: http.MethodGet, Path: "/admin"}, DefaultClassify)
}

func (u *AdminUser) GetRegistrations(ctx context.Context) DoResult {
	return u.Send(ctx, "get_registrations", &Request{
		Method: http.MethodGet,
		Path:   "/api/admin/registrations",
		Header: map[string]string{"Authorization": "Bearer " + u.token},
	}, DefaultClassify)
}
