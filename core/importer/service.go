package importer

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/user"
)

// Row outcomes
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeFailed  = "failed"
)

type (
	Summary struct {
		Total   int `json:"total"`
		Created int `json:"created"`
		Updated int `json:"updated"`
		Failed  int `json:"failed"`
	}

	RowResult struct {
		Row             int     `json:"row"`
		RollNo          string  `json:"roll_no"`
		Email           string  `json:"email"`
		FullName        string  `json:"full_name"`
		UserID          string  `json:"user_id"`
		MenteeID        string  `json:"mentee_id"`
		MentorID        *string `json:"mentor_id"`
		DefaultPassword string  `json:"default_password,omitempty"` // created rows only
	}

	RowError struct {
		Row    int    `json:"row"`
		RollNo string `json:"roll_no,omitempty"`
		Email  string `json:"email,omitempty"`
		Error  string `json:"error"`
	}

	Details struct {
		Success []RowResult `json:"success"`
		Updated []RowResult `json:"updated"`
		Failed  []RowError  `json:"failed"`
	}

	// Report is the outcome of an import, row by row.
	Report struct {
		Summary Summary    `json:"summary"`
		Details Details    `json:"details"`
		Errors  []RowError `json:"errors"`
	}

	// Options of the import Service.
	Options struct {
		SendWelcomeEmails bool
	}

	Service struct {
		users      *user.Service
		mentors    *mentor.Service
		mentees    *mentee.Service
		mailSvc    core.EmailService
		validate   *validator.Validate
		translator ut.Translator
		opts       Options
	}
)

func NewService(
	users *user.Service,
	mentors *mentor.Service,
	mentees *mentee.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	opts Options,
) *Service {
	return &Service{
		users:      users,
		mentors:    mentors,
		mentees:    mentees,
		mailSvc:    mailSvc,
		validate:   validate,
		translator: translator,
		opts:       opts,
	}
}

func newReport() Report {
	return Report{
		Details: Details{Success: []RowResult{}, Updated: []RowResult{}, Failed: []RowError{}},
		Errors:  []RowError{},
	}
}

func (rep *Report) fail(row StudentRow, msg string) {
	re := RowError{Row: row.RowNumber, RollNo: row.RollNo, Email: row.StudentEmail, Error: msg}
	rep.Details.Failed = append(rep.Details.Failed, re)
	rep.Errors = append(rep.Errors, re)
	rep.Summary.Failed++
}

// ImportFile imports the file at path and removes it, whatever the outcome.
func (svc *Service) ImportFile(ctx context.Context, path string) (rep Report, err error) {
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = errors.Wrap(rmErr, "removing import file")
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return Report{}, errors.Wrap(err, "opening import file")
	}
	defer f.Close()
	return svc.Import(ctx, f)
}

// Import processes the rows of r sequentially. A failing row is reported and never
// stops the following rows.
func (svc *Service) Import(ctx context.Context, r io.Reader) (Report, error) {
	rows, err := ParseRows(r)
	if err != nil {
		if errors.Cause(err) == ErrEmptyFile {
			return Report{}, core.NewFieldValidationError("file", err.Error())
		}
		return Report{}, core.NewFieldValidationError("file", "invalid CSV file: "+errors.Cause(err).Error())
	}

	rep := newReport()
	rep.Summary.Total = len(rows)
	var welcome []*core.EmailMessage

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if row.ParseError != "" {
			rep.fail(row, row.ParseError)
			continue
		}
		if msg := svc.validateRow(&row); msg != "" {
			rep.fail(row, msg)
			continue
		}

		res, outcome, err := svc.processRow(ctx, row)
		if err != nil {
			rep.fail(row, errors.Cause(err).Error())
			continue
		}
		switch outcome {
		case OutcomeCreated:
			rep.Details.Success = append(rep.Details.Success, res)
			rep.Summary.Created++
			if svc.opts.SendWelcomeEmails {
				welcome = append(welcome, welcomeMessage(res))
			}
		case OutcomeUpdated:
			rep.Details.Updated = append(rep.Details.Updated, res)
			rep.Summary.Updated++
		}
	}

	if len(welcome) > 0 {
		svc.mailSvc.SendMessages(welcome...)
	}
	return rep, nil
}

// validateRow normalises row and returns the validation message, if any.
func (svc *Service) validateRow(row *StudentRow) string {
	row.RollNo = core.CleanString(row.RollNo)
	row.FullName = core.CleanString(row.FullName)
	row.StudentEmail = core.CleanString(row.StudentEmail, true /* lower */)
	row.StudentPhone = core.StripSpaces(row.StudentPhone)
	row.ParentsPhone = core.StripSpaces(row.ParentsPhone)
	row.ParentsEmail = core.CleanString(row.ParentsEmail, true /* lower */)
	row.MentorEmail = core.CleanString(row.MentorEmail, true /* lower */)

	err := svc.validate.Struct(row)
	if err == nil {
		return ""
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(vErrs))
	for _, vErr := range vErrs {
		msgs = append(msgs, vErr.Field()+": "+vErr.Translate(svc.translator))
	}
	return strings.Join(msgs, "; ")
}

// resolveMentor returns the id of the mentor profile owned by the user with `email`, or nil.
func (svc *Service) resolveMentor(ctx context.Context, email string) (*string, error) {
	if email == "" || !core.IsSimpleEmail(email) {
		return nil, nil
	}
	usr, err := svc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding mentor user")
	}
	if !usr.IsMentor() {
		return nil, nil
	}
	m, err := svc.mentors.GetByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == mentor.ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding mentor profile")
	}
	return &m.ID, nil
}

func (svc *Service) processRow(ctx context.Context, row StudentRow) (RowResult, string, error) {
	mentorID, err := svc.resolveMentor(ctx, row.MentorEmail)
	if err != nil {
		return RowResult{}, OutcomeFailed, err
	}

	usr, err := svc.users.GetByEmail(ctx, row.StudentEmail)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return RowResult{}, OutcomeFailed, errors.Wrap(err, "finding user")
		}
		return svc.create(ctx, row, mentorID)
	}

	if !usr.IsMentee() {
		return RowResult{}, OutcomeFailed, errors.Errorf("email already registered to a %s account", usr.Role)
	}

	mt, err := svc.mentees.GetByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) != mentee.ErrNotFound {
			return RowResult{}, OutcomeFailed, errors.Wrap(err, "finding mentee")
		}
		// mentee user without profile: create the profile
		mt, err = svc.mentees.Create(ctx, newMentee(usr, row, mentorID))
		if err != nil {
			return RowResult{}, OutcomeFailed, errors.Wrap(err, "creating mentee")
		}
		return result(row, usr, mt), OutcomeUpdated, nil
	}

	mt.Phone = row.StudentPhone
	mt.StudentID = row.RollNo
	if row.FullName != "" {
		mt.FullName = row.FullName
	}
	if row.ClassName != "" {
		mt.Class = row.ClassName
	}
	if row.Section != "" {
		mt.Section = row.Section
	}
	if mentorID != nil {
		mt.MentorID = mentorID
	}
	if row.ParentsPhone != "" {
		mt.ParentInfo.PrimaryContact = row.ParentsPhone
	}
	if row.ParentsEmail != "" && core.IsSimpleEmail(row.ParentsEmail) {
		mt.ParentInfo.Email = row.ParentsEmail
	}
	if mt, err = svc.mentees.Update(ctx, mt); err != nil {
		return RowResult{}, OutcomeFailed, errors.Wrap(err, "updating mentee")
	}
	return result(row, usr, mt), OutcomeUpdated, nil
}

func (svc *Service) create(ctx context.Context, row StudentRow, mentorID *string) (RowResult, string, error) {
	pwd := user.DefaultPassword(row.RollNo)
	usr, err := svc.users.Create(ctx, user.NewUser{
		Email:              row.StudentEmail,
		Password:           pwd,
		Role:               user.RoleMentee,
		MustChangePassword: true,
	})
	if err != nil {
		return RowResult{}, OutcomeFailed, errors.Wrap(err, "creating user")
	}

	mt, err := svc.mentees.Create(ctx, newMentee(usr, row, mentorID))
	if err != nil {
		if dErr := svc.users.Delete(ctx, usr.ID); dErr != nil {
			return RowResult{}, OutcomeFailed, errors.Wrap(dErr, "removing user")
		}
		return RowResult{}, OutcomeFailed, errors.Wrap(err, "creating mentee")
	}

	res := result(row, usr, mt)
	res.DefaultPassword = pwd
	return res, OutcomeCreated, nil
}

func newMentee(usr user.User, row StudentRow, mentorID *string) mentee.Mentee {
	mt := mentee.Mentee{
		UserID:    usr.ID,
		FullName:  row.FullName,
		StudentID: row.RollNo,
		Email:     usr.Email,
		Phone:     row.StudentPhone,
		Class:     row.ClassName,
		Section:   row.Section,
		ParentInfo: mentee.ParentInfo{
			PrimaryContact: row.ParentsPhone,
		},
		MentorID: mentorID,
	}
	if core.IsSimpleEmail(row.ParentsEmail) {
		mt.ParentInfo.Email = row.ParentsEmail
	}
	return mt
}

func result(row StudentRow, usr user.User, mt mentee.Mentee) RowResult {
	return RowResult{
		Row:      row.RowNumber,
		RollNo:   mt.StudentID,
		Email:    usr.Email,
		FullName: mt.FullName,
		UserID:   usr.ID,
		MenteeID: mt.ID,
		MentorID: mt.MentorID,
	}
}

type welcomeData struct {
	FullName string
	Email    string
	Password string
}

func welcomeMessage(res RowResult) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: res.FullName, Address: res.Email}},
		Subject:      "Your account",
		TemplateName: "welcome",
		TemplateData: welcomeData{FullName: res.FullName, Email: res.Email, Password: res.DefaultPassword},
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("total=%d created=%d updated=%d failed=%d", s.Total, s.Created, s.Updated, s.Failed)
}
