// Package google implements the notification dispatcher over the Google
// Calendar and Gmail APIs: it creates the interview event with a Meet link
// and delivers the invitation email. Services arrive already authenticated.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/dispatch"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

// bodyGenerator optionally drafts the invitation email text. When absent or
// failing, the static template is used instead.
type bodyGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Dispatcher sends interview notifications through Google services.
type Dispatcher struct {
	calendar   *calendar.Service
	gmail      *gmail.Service
	calendarID string
	sender     string
	timezone   string
	logger     *zap.Logger
	bodyGen    bodyGenerator
}

type Option func(*Dispatcher)

// WithBodyGenerator installs an LLM capability for drafting email bodies.
func WithBodyGenerator(g bodyGenerator) Option {
	return func(d *Dispatcher) { d.bodyGen = g }
}

// WithCalendarID targets a calendar other than "primary".
func WithCalendarID(id string) Option {
	return func(d *Dispatcher) { d.calendarID = id }
}

func New(cal *calendar.Service, gm *gmail.Service, sender, timezone string, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		calendar:   cal,
		gmail:      gm,
		calendarID: "primary",
		sender:     sender,
		timezone:   timezone,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch creates the calendar event and sends the invitation email. When
// the email fails after the event was created, the event is deleted again so
// the proposal sees a single consistent outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription) (*dispatch.Ack, error) {
	email := strings.TrimSpace(rec.Contact.Email)
	if email == "" {
		return nil, &dispatch.Error{
			Reason: dispatch.ReasonAddressInvalid,
			Err:    fmt.Errorf("candidate %q has no email address", rec.ID),
		}
	}

	ack, err := d.createEvent(ctx, rec, p, job, email)
	if err != nil {
		return nil, err
	}

	if err := d.sendInvitation(ctx, rec, p, job, email, ack); err != nil {
		d.logger.Warn("email delivery failed, removing created event",
			zap.String("candidate_id", rec.ID),
			zap.String("event_ref", ack.EventRef),
			zap.Error(err),
		)
		if delErr := d.Cancel(ctx, ack.EventRef); delErr != nil {
			d.logger.Error("compensating event deletion failed",
				zap.String("event_ref", ack.EventRef),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	d.logger.Info("interview dispatched",
		zap.String("candidate_id", rec.ID),
		zap.String("event_ref", ack.EventRef),
		zap.String("meet_link", ack.MeetLink),
	)

	return ack, nil
}

func (d *Dispatcher) createEvent(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription, email string) (*dispatch.Ack, error) {
	name := rec.Name
	if name == "" {
		name = rec.ID
	}

	event := &calendar.Event{
		Summary:     fmt.Sprintf("Interview: %s", name),
		Description: eventDescription(job),
		Location:    "Google Meet",
		Start:       &calendar.EventDateTime{DateTime: p.Start.Format("2006-01-02T15:04:05-07:00"), TimeZone: d.timezone},
		End:         &calendar.EventDateTime{DateTime: p.End.Format("2006-01-02T15:04:05-07:00"), TimeZone: d.timezone},
		Attendees:   []*calendar.EventAttendee{{Email: email, DisplayName: name}},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             fmt.Sprintf("meet-%s", uuid.New().String()),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := d.calendar.Events.Insert(d.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	ack := &dispatch.Ack{EventRef: created.Id, EventLink: created.HtmlLink}
	if created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				ack.MeetLink = ep.Uri
				break
			}
		}
	}

	return ack, nil
}

// Cancel deletes a previously created event: the compensating action when a
// run is cancelled after confirmation.
func (d *Dispatcher) Cancel(ctx context.Context, eventRef string) error {
	if err := d.calendar.Events.Delete(d.calendarID, eventRef).SendUpdates("all").Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

func (d *Dispatcher) sendInvitation(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription, email string, ack *dispatch.Ack) error {
	body := d.emailBody(ctx, rec, p, job, ack)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", d.sender))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", email))
	msg.WriteString(fmt.Sprintf("Subject: Interview Invitation - %s\r\n", displayName(rec)))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	raw := base64.URLEncoding.EncodeToString([]byte(msg.String()))
	if _, err := d.gmail.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

// emailBody prefers the LLM draft and falls back to the static template.
func (d *Dispatcher) emailBody(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription, ack *dispatch.Ack) string {
	if d.bodyGen != nil {
		if body, err := d.bodyGen.GenerateContent(ctx, invitationPrompt(rec, p, job, ack)); err == nil {
			return body
		} else {
			d.logger.Warn("llm email body generation failed, using template",
				zap.String("candidate_id", rec.ID),
				zap.Error(err),
			)
		}
	}
	return templateBody(rec, p, ack)
}

func displayName(rec *candidate.Record) string {
	if rec.Name != "" {
		return rec.Name
	}
	return rec.ID
}

func eventDescription(job *candidate.JobDescription) string {
	text := strings.TrimSpace(job.Text)
	if len(text) > 400 {
		text = text[:400] + "..."
	}
	return "Interview for the role described below.\n\n" + text
}

// classify folds Google API errors into the boundary's failure taxonomy.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &dispatch.Error{Reason: dispatch.ReasonQuotaExceeded, Err: err}
		case apiErr.Code == http.StatusForbidden && strings.Contains(apiErr.Message, "uota"):
			return &dispatch.Error{Reason: dispatch.ReasonQuotaExceeded, Err: err}
		case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "attendee"):
			return &dispatch.Error{Reason: dispatch.ReasonAddressInvalid, Err: err}
		case apiErr.Code >= 500:
			return &dispatch.Error{Reason: dispatch.ReasonTransientNetwork, Err: err}
		default:
			return &dispatch.Error{Reason: dispatch.ReasonPermanent, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &dispatch.Error{Reason: dispatch.ReasonTransientNetwork, Err: err}
	}

	return &dispatch.Error{Reason: dispatch.ReasonPermanent, Err: err}
}
