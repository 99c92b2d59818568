// Package certificate issues completion certificates: it binds staff and
// course data to a layout, composes the text onto a template image and
// records the result under a freshly allocated certificate number.
package certificate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/certify/layout"
)

const (
	// DateLayout 是证书上结课日期的格式。
	DateLayout = "02-01-2006"
	// ShareDateLayout 是分享文案中签发日期的格式。
	ShareDateLayout = "02 January, 2006"
)

// ErrInvalidRequest reports missing staff or course details.
var ErrInvalidRequest = errors.New("certificate: invalid request")

// Staff is the person receiving the certificate.
type Staff struct {
	Code     string `json:"code"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Course is the completed training.
type Course struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	SubColumn string    `json:"sub_column"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Request pairs a staff member with a course.
type Request struct {
	Staff  Staff  `json:"staff"`
	Course Course `json:"course"`
}

// Record describes an issued certificate.
type Record struct {
	ID          string              `json:"id"`
	Staff       Staff               `json:"staff"`
	Course      Course              `json:"course"`
	IssueDate   time.Time           `json:"issue_date"`
	GeneratedOn time.Time           `json:"generated_on"`
	FileName    string              `json:"file_name"`
	PNG         []byte              `json:"-"`
	PDF         []byte              `json:"-"`
	Degraded    bool                `json:"degraded"`
	Lines       []layout.FittedLine `json:"lines"`
}

// Validate checks the fields the certificate text needs.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Staff.FullName) == "" {
		missing = append(missing, "staff.full_name")
	}
	if strings.TrimSpace(r.Course.Name) == "" {
		missing = append(missing, "course.name")
	}
	if r.Course.EndDate.IsZero() {
		missing = append(missing, "course.end_date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: 缺少 %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if !r.Course.StartDate.IsZero() && r.Course.EndDate.Before(r.Course.StartDate) {
		return fmt.Errorf("%w: 结课日期早于开课日期", ErrInvalidRequest)
	}
	return nil
}

// Data returns the binding data for layouts:
// staff.{code,full_name,role} and course.{code,name,sub_column,start_date,end_date}.
func (r Request) Data() map[string]any {
	return map[string]any{
		"staff": map[string]any{
			"code":      r.Staff.Code,
			"full_name": r.Staff.FullName,
			"role":      r.Staff.Role,
		},
		"course": map[string]any{
			"code":       r.Course.Code,
			"name":       r.Course.Name,
			"sub_column": r.Course.SubColumn,
			"start_date": formatDate(r.Course.StartDate),
			"end_date":   formatDate(r.Course.EndDate),
			"sentence":   CourseSentence(r.Course),
		},
	}
}

// CourseSentence returns "Successfully completed the <name>[ <sub>] Course".
func CourseSentence(c Course) string {
	text := "Successfully completed the " + strings.TrimSpace(c.Name)
	if sub := strings.TrimSpace(c.SubColumn); sub != "" {
		text += " " + sub
	}
	return text + " Course"
}

// FileName returns "<name>_<course>_certificate.png" with spaces and
// slashes replaced by underscores.
func FileName(s Staff, c Course) string {
	return sanitize(s.FullName) + "_" + sanitize(c.Name) + "_certificate.png"
}

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_")

func sanitize(s string) string { return fileNameReplacer.Replace(s) }

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
