package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/dispatch"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

// templateBody is the deterministic invitation text used when no LLM
// capability is wired in or when it fails.
func templateBody(rec *candidate.Record, p *schedule.Proposal, ack *dispatch.Ack) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dear %s,\n\n", displayName(rec)))
	sb.WriteString("Thank you for your application. We are pleased to let you know that you have been shortlisted for an interview.\n\n")
	sb.WriteString(fmt.Sprintf("Scheduled time: %s\n", p.Start.Format(time.RFC1123)))
	if ack.MeetLink != "" {
		sb.WriteString(fmt.Sprintf("Google Meet link: %s\n", ack.MeetLink))
	} else {
		sb.WriteString("A Google Meet link will follow with the calendar invite.\n")
	}
	sb.WriteString("\nPlease reply to this email to confirm your attendance.\n\n")
	sb.WriteString("Best regards,\nThe Hiring Team\n")
	return sb.String()
}

// invitationPrompt asks the LLM for a short, professional invitation email.
func invitationPrompt(rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription, ack *dispatch.Ack) string {
	meet := ack.MeetLink
	if meet == "" {
		meet = "will be sent shortly via calendar invite"
	}

	var sb strings.Builder
	sb.WriteString("Write a short, professional email inviting a candidate to an interview.\n\n")
	sb.WriteString(fmt.Sprintf("Candidate name: %s\n", displayName(rec)))
	sb.WriteString(fmt.Sprintf("Scheduled time: %s\n", p.Start.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("Google Meet link: %s\n", meet))
	sb.WriteString("Role (from the job description):\n")
	sb.WriteString(job.Text)
	sb.WriteString("\n\nInclude appreciation for the application, the scheduled time, the Meet link, ")
	sb.WriteString("and ask the candidate to confirm attendance. ")
	sb.WriteString("Return plain text only, no markdown, no subject line.\n")
	return sb.String()
}
