package hackload

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"

	ContactMessageText = "This is a load test message"

	minMembers = 2
	maxMembers = 4
)

var (
	memberYears    = []int{2, 3, 4}
	memberBranches = []string{"CSE", "ISE", "ECE", "ME", "CIVIL"}

	seedSalt int64
)

// Rand is the subset of *rand.Rand used by payload generators and task selection
type Rand interface {
	Intn(n int) int
}

// NewRand creates unseeded-by-user random source, every call gets a different seed
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() + atomic.AddInt64(&seedSalt, 1)))
}

type TeamRegistration struct {
	TeamName     string   `json:"teamName" validate:"required,startswith=Team_"`
	ProjectTitle string   `json:"projectTitle" validate:"required"`
	Members      []Member `json:"members" validate:"min=2,max=4,dive"`
}

type Member struct {
	Name       string `json:"name" validate:"required"`
	USN        string `json:"usn" validate:"required,len=10"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,numeric,len=10"`
	Year       int    `json:"year" validate:"oneof=2 3 4"`
	Branch     string `json:"branch" validate:"oneof=CSE ISE ECE ME CIVIL"`
	IsTeamLead bool   `json:"isTeamLead"`
}

type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// TeamLeadQuery is sent as url query, never as body
type TeamLeadQuery struct {
	Email string `form:"email" validate:"required,email"`
	Phone string `form:"phone" validate:"required,numeric,len=10"`
}

// NewTeamRegistration generates registration of 2-4 members, first member is the team lead
func NewTeamRegistration(r Rand) TeamRegistration {
	teamName := "Team_" + randString(r, upperLetters, 5)
	n := randBetween(r, minMembers, maxMembers)
	members := make([]Member, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, newMember(r, i == 0))
	}
	return TeamRegistration{
		TeamName:     teamName,
		ProjectTitle: fmt.Sprintf("Project_%d", randBetween(r, 100, 999)),
		Members:      members,
	}
}

func newMember(r Rand, lead bool) Member {
	return Member{
		Name:       fmt.Sprintf("Member_%d", randBetween(r, 1000, 9999)),
		USN:        NewUSN(r),
		Email:      fmt.Sprintf("test%d@example.com", randBetween(r, 1000, 9999)),
		Phone:      NewPhone(r),
		Year:       memberYears[r.Intn(len(memberYears))],
		Branch:     memberBranches[r.Intn(len(memberBranches))],
		IsTeamLead: lead,
	}
}

func NewContactMessage(r Rand) ContactMessage {
	return ContactMessage{
		Name:    fmt.Sprintf("User_%d", randBetween(r, 1000, 9999)),
		Email:   fmt.Sprintf("contact%d@example.com", randBetween(r, 1000, 9999)),
		Message: ContactMessageText,
	}
}

func NewTeamLeadQuery(r Rand) TeamLeadQuery {
	return TeamLeadQuery{
		Email: fmt.Sprintf("test%d@example.com", randBetween(r, 1000, 9999)),
		Phone: NewPhone(r),
	}
}

// NewUSN university serial number, 1DS{20-23}IS{100-999}
func NewUSN(r Rand) string {
	return fmt.Sprintf("1DS%dIS%d", randBetween(r, 20, 23), randBetween(r, 100, 999))
}

// NewPhone 10 random digits
func NewPhone(r Rand) string {
	return randString(r, digits, 10)
}

// randBetween returns value in [lo, hi]
func randBetween(r Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

func randString(r Rand, alphabet string, k int) string {
	b := make([]byte, k)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}
