// Package notify renders customer notices for repair jobs, builds WhatsApp deep links for them
// and delivers copies to shop staff by email and webhooks.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"text/template"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/syncs"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
)

// ErrNoPhone returned when a job has no digits to build a WhatsApp link from
var ErrNoPhone = errors.New("no valid phone number")

const (
	defaultInitial = `*{{upper .Shop}} - ITEM READY*

Your {{.Job.Device}} is ready for pickup!
📍 Pickup Deadline: {{date .Job.PickupDeadline}}
⚠️ Unclaimed items will be confiscated after {{date .Job.ConfiscationDate}}.`

	defaultFinal = `*FINAL WARNING - CONFISCATION NOTICE*

Your {{.Job.Device}} will be confiscated on {{date .Job.ConfiscationDate}}
❗ Last chance to collect before {{date .Job.ConfiscationDate}}`

	defaultUpdate = `*{{upper .Shop}} SERVICE UPDATE*

🔹 *Job ID:* {{.Job.ID}}
🔹 *Customer:* {{or .Job.Name "Not specified"}}
🔹 *Device:* {{or .Job.Device "Not specified"}}
🔹 *Status:* {{or .Job.Status "Not specified"}}
🔹 *Problem:* {{or .Job.Problem "Not specified"}}
🔹 *Accessories:* {{if .Job.Accessories}}{{join .Job.Accessories ", "}}{{else}}None{{end}}

_Last updated: {{date .Job.Date}}_`
)

var nonDigits = regexp.MustCompile(`\D`)

// Repeater defines retry strategy for a single delivery
type Repeater interface {
	Do(ctx context.Context, fun func() error, errors ...error) (err error)
}

// Templates with text/template sources for each notice kind, defaults used for empty ones
type Templates struct {
	Initial string
	Final   string
	Update  string
}

// Params define message rendering and delivery behaviour
type Params struct {
	ShopName    string
	Location    *time.Location // dates in messages are shown in this zone, UTC if nil
	Templates   Templates
	Repeater    Repeater // retries every single delivery, no retries if nil
	Concurrency int      // parallel deliveries, 4 if not set
}

// SendersParams define staff destinations for notices
type SendersParams struct {
	SMTP      notify.SMTPParams
	FromEmail string
	ToEmails  []string
	Webhooks  []string // http(s) URLs, message text is posted as body
	Timeout   time.Duration
}

// Service renders notices and delivers them to all configured destinations
type Service struct {
	destinations []notify.Notifier
	fromEmail    string
	toEmail      []string
	webhooks     []string

	shopName    string
	loc         *time.Location
	templates   map[enums.NoticeKind]*template.Template
	repeater    Repeater
	concurrency int
}

// NewService makes notification service. Destinations are optional, without them
// notices are rendered and logged only.
func NewService(params Params, senders SendersParams) *Service {
	res := Service{
		fromEmail:   senders.FromEmail,
		toEmail:     senders.ToEmails,
		webhooks:    senders.Webhooks,
		shopName:    params.ShopName,
		loc:         params.Location,
		repeater:    params.Repeater,
		concurrency: params.Concurrency,
	}
	if res.loc == nil {
		res.loc = time.UTC
	}
	if res.concurrency <= 0 {
		res.concurrency = 4
	}

	res.templates = map[enums.NoticeKind]*template.Template{
		enums.NoticeInitial: res.parse("initial", params.Templates.Initial, defaultInitial),
		enums.NoticeFinal:   res.parse("final", params.Templates.Final, defaultFinal),
		enums.NoticeUpdate:  res.parse("update", params.Templates.Update, defaultUpdate),
	}

	if len(senders.ToEmails) > 0 {
		if senders.FromEmail == "" {
			log.Printf("[WARN] no from email set, email notifications disabled")
		} else {
			smtp := senders.SMTP
			if smtp.TimeOut == 0 {
				smtp.TimeOut = senders.Timeout
			}
			res.destinations = append(res.destinations, notify.NewEmail(smtp))
		}
	}
	if len(senders.Webhooks) > 0 {
		res.destinations = append(res.destinations, notify.NewWebhook(notify.WebhookParams{Timeout: senders.Timeout}))
	}
	log.Printf("[INFO] notifications %s", res.String())
	return &res
}

// Message renders notice text of the given kind for a job
func (s *Service) Message(job store.Job, kind enums.NoticeKind) (string, error) {
	tmpl, ok := s.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown notice kind %q", kind)
	}
	data := struct {
		Shop string
		Job  store.Job
	}{Shop: s.shopName, Job: job}

	buf := bytes.Buffer{}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to apply %s template: %w", kind, err)
	}
	return buf.String(), nil
}

// Link renders notice of the given kind and makes WhatsApp deep link for the job's phone
func (s *Service) Link(job store.Job, kind enums.NoticeKind) (string, error) {
	text, err := s.Message(job, kind)
	if err != nil {
		return "", err
	}
	link, err := WhatsAppLink(job.CountryCode, job.Phone, text)
	if err != nil {
		return "", fmt.Errorf("can't make link for job %s: %w", job.ID, err)
	}
	return link, nil
}

// Notify renders the notice and sends it with the customer's WhatsApp link to staff destinations
func (s *Service) Notify(ctx context.Context, job store.Job, kind enums.NoticeKind) error {
	text, err := s.Message(job, kind)
	if err != nil {
		return err
	}
	link, err := WhatsAppLink(job.CountryCode, job.Phone, text)
	if err != nil {
		log.Printf("[WARN] job %s has no phone, %s notice can't be sent to the customer", job.ID, kind)
		link = "n/a"
	}

	if len(s.destinations) == 0 {
		log.Printf("[INFO] %s notice for job %s, %s", kind, job.ID, link)
		return nil
	}

	subj := fmt.Sprintf("%s: %s notice for job #%s", s.shopName, kind, job.ID)
	body := fmt.Sprintf("%s\n\nCustomer: %s, +%s\nWhatsApp: %s", text, job.Name, nonDigits.ReplaceAllString(job.CountryCode+job.Phone, ""), link)
	return s.Send(ctx, subj, body)
}

// Send delivers text to every destination, each delivery retried by repeater
func (s *Service) Send(ctx context.Context, subj, text string) error {
	concurrency := s.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	gr := syncs.NewErrSizedGroup(concurrency, syncs.Context(ctx))
	for _, n := range s.destinations {
		for _, dest := range s.destinationsFor(n, subj) {
			gr.Go(func() error {
				return s.deliver(ctx, n, dest, text)
			})
		}
	}
	if err := gr.Wait(); err != nil {
		return fmt.Errorf("failed to send %q: %w", subj, err)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, n notify.Notifier, dest, text string) error {
	send := func() error { return n.Send(ctx, dest, text) }
	if s.repeater == nil {
		return send()
	}
	return s.repeater.Do(ctx, send)
}

// destinationsFor returns destination strings served by the notifier
func (s *Service) destinationsFor(n notify.Notifier, subj string) []string {
	if n.Schema() == "mailto" {
		if len(s.toEmail) == 0 {
			return nil
		}
		return []string{fmt.Sprintf("mailto:%s?from=%s&subject=%s", strings.Join(s.toEmail, ","), s.fromEmail, url.QueryEscape(subj))}
	}
	res := []string{}
	for _, w := range s.webhooks {
		if strings.HasPrefix(w, n.Schema()) {
			res = append(res, w)
		}
	}
	return res
}

func (s *Service) String() string {
	if len(s.destinations) == 0 {
		return "disabled, log only"
	}
	names := make([]string, 0, len(s.destinations))
	for _, d := range s.destinations {
		names = append(names, d.String())
	}
	return "to " + strings.Join(names, ", ")
}

// parse makes template from custom source, falls back to default one if custom is empty or broken
func (s *Service) parse(name, custom, def string) *template.Template {
	funcs := template.FuncMap{
		"upper": strings.ToUpper,
		"join":  strings.Join,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(s.loc).Format("02/01/2006")
		},
	}
	if custom != "" {
		tmpl, err := template.New(name).Funcs(funcs).Parse(custom)
		if err == nil {
			return tmpl
		}
		log.Printf("[WARN] can't parse %s template, using default: %v", name, err)
	}
	return template.Must(template.New(name).Funcs(funcs).Parse(def))
}

// WhatsAppLink makes wa.me link with pre-filled text. Phone is country code followed by number,
// all non-digit characters stripped.
func WhatsAppLink(countryCode, phone, text string) (string, error) {
	number := nonDigits.ReplaceAllString(countryCode+phone, "")
	if number == "" {
		return "", ErrNoPhone
	}
	return "https://wa.me/" + number + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20"), nil
}
