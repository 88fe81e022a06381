package notify

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tripmanager/quotation"
	"tripmanager/triprequest"
)

// Config carries the delivery targets shared by all events.
type Config struct {
	// AdminEmail receives operational notifications.
	AdminEmail string
	// AppURL is the portal base URL used to build links in emails.
	AppURL string
}

// Notifier turns domain lifecycle events into emails. All delivery is
// asynchronous and best effort: a failed send is logged, never surfaced
// to the operation that triggered it.
type Notifier struct {
	mailer Mailer
	cfg    Config
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewNotifier(mailer Mailer, cfg Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{mailer: mailer, cfg: cfg, logger: logger}
}

// Wait blocks until all in-flight deliveries finish. Called on shutdown
// and from tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// dispatch sends every email of one event concurrently, off the caller's
// goroutine.
func (n *Notifier) dispatch(event string, emails ...Email) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		var g errgroup.Group
		for _, e := range emails {
			e := e
			g.Go(func() error {
				if err := n.mailer.Send(e); err != nil {
					n.logger.Warn("email delivery failed",
						zap.String("event", event), zap.String("to", e.To), zap.Error(err))
				}
				return nil
			})
		}
		g.Wait()
	}()
}

// VerificationIssued emails the verification link to a newly registered
// user.
func (n *Notifier) VerificationIssued(email string, name *string, token string) {
	toName := displayName(name, email)
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(n.cfg.AppURL, "/"), token)

	plain := fmt.Sprintf(
		"Hello %s,\n\nWelcome aboard. Please verify your email address by opening the link below:\n\n%s\n\nThe link expires in 24 hours. If you did not create an account, you can ignore this message.\n",
		toName, link)

	n.dispatch("verification_issued", Email{
		To:        email,
		ToName:    toName,
		Subject:   "Verify your email address",
		PlainText: plain,
		HTML: htmlBody("Verify your email address",
			fmt.Sprintf("Hello %s,", html.EscapeString(toName)),
			"Welcome aboard. Please verify your email address by clicking the link below:",
			fmt.Sprintf(`<a href="%s">Verify email</a>`, link),
			"The link expires in 24 hours. If you did not create an account, you can ignore this message."),
	})
}

// TripRequestCreated notifies the admin team of a new request and sends
// the customer an acknowledgment.
func (n *Notifier) TripRequestCreated(req triprequest.TripRequest, owner triprequest.UserSummary) {
	ownerName := displayName(owner.Name, owner.Email)
	order := fmt.Sprintf("#%d", req.OrderNumber)

	adminPlain := fmt.Sprintf(
		"New trip request %s from %s %s (%s).\n\nService: %s\nPassengers: %d adult(s)\nPhone: %s\n\nOpen the portal to issue a quotation:\n%s/admin/requests/%s\n",
		order, req.FirstName, req.LastName, owner.Email, req.ServiceType, req.NumberOfAdults, req.Phone,
		strings.TrimRight(n.cfg.AppURL, "/"), req.ID)

	customerPlain := fmt.Sprintf(
		"Hello %s,\n\nWe received your trip request %s. Our team will review it and send you a quotation shortly.\n\nYou can follow its progress here:\n%s/requests/%s\n",
		req.FirstName, order, strings.TrimRight(n.cfg.AppURL, "/"), req.ID)

	n.dispatch("trip_request_created",
		Email{
			To:        n.cfg.AdminEmail,
			ToName:    "Admin",
			Subject:   fmt.Sprintf("New trip request %s", order),
			PlainText: adminPlain,
			HTML: htmlBody(fmt.Sprintf("New trip request %s", order),
				fmt.Sprintf("From %s %s (%s).", html.EscapeString(req.FirstName), html.EscapeString(req.LastName), html.EscapeString(owner.Email)),
				fmt.Sprintf("Service: %s, %d adult(s). Phone: %s.", req.ServiceType, req.NumberOfAdults, html.EscapeString(req.Phone)),
				fmt.Sprintf(`<a href="%s/admin/requests/%s">Open request</a>`, strings.TrimRight(n.cfg.AppURL, "/"), req.ID)),
		},
		Email{
			To:        owner.Email,
			ToName:    ownerName,
			Subject:   fmt.Sprintf("We received your trip request %s", order),
			PlainText: customerPlain,
			HTML: htmlBody(fmt.Sprintf("Trip request %s received", order),
				fmt.Sprintf("Hello %s,", html.EscapeString(req.FirstName)),
				"We received your trip request. Our team will review it and send you a quotation shortly.",
				fmt.Sprintf(`<a href="%s/requests/%s">View request</a>`, strings.TrimRight(n.cfg.AppURL, "/"), req.ID)),
		})
}

// TripConfirmed notifies the admin team that a customer filled in the
// final flight details.
func (n *Notifier) TripConfirmed(req triprequest.TripRequest, owner triprequest.UserSummary) {
	order := fmt.Sprintf("#%d", req.OrderNumber)

	var details []string
	if req.ArrivalFlightNumber != nil {
		details = append(details, fmt.Sprintf("Arrival flight: %s %s %s",
			deref(req.ArrivalFlightNumber), formatDate(req.ArrivalFlightDate), deref(req.ArrivalFlightTime)))
	}
	if req.DepartureFlightNumber != nil {
		details = append(details, fmt.Sprintf("Departure flight: %s %s %s",
			deref(req.DepartureFlightNumber), formatDate(req.DepartureFlightDate), deref(req.DepartureFlightTime)))
	}

	plain := fmt.Sprintf(
		"Trip request %s was confirmed by %s %s (%s).\n\n%s\n\n%s/admin/requests/%s\n",
		order, req.FirstName, req.LastName, owner.Email, strings.Join(details, "\n"),
		strings.TrimRight(n.cfg.AppURL, "/"), req.ID)

	lines := []string{fmt.Sprintf("Confirmed by %s %s (%s).",
		html.EscapeString(req.FirstName), html.EscapeString(req.LastName), html.EscapeString(owner.Email))}
	for _, d := range details {
		lines = append(lines, html.EscapeString(d))
	}
	lines = append(lines, fmt.Sprintf(`<a href="%s/admin/requests/%s">Open request</a>`,
		strings.TrimRight(n.cfg.AppURL, "/"), req.ID))

	n.dispatch("trip_confirmed", Email{
		To:        n.cfg.AdminEmail,
		ToName:    "Admin",
		Subject:   fmt.Sprintf("Trip request %s confirmed", order),
		PlainText: plain,
		HTML:      htmlBody(fmt.Sprintf("Trip request %s confirmed", order), lines...),
	})
}

// QuotationSent emails the quotation details to the customer.
func (n *Notifier) QuotationSent(q quotation.Quotation, trip quotation.TripSummary) {
	ownerName := displayName(trip.OwnerName, trip.OwnerEmail)
	order := fmt.Sprintf("#%d", trip.OrderNumber)
	price := fmt.Sprintf("%.2f %s", q.Price, q.Currency)
	if q.IsPriceEachWay {
		price += " each way"
	}

	var validity string
	if q.ValidUntil != nil {
		validity = fmt.Sprintf("This offer is valid until %s.", q.ValidUntil.Format("02 Jan 2006"))
	}

	plain := fmt.Sprintf(
		"Hello %s,\n\nWe have a quotation for your trip request %s.\n\nPrice: %s\n%s\nReview and respond here:\n%s/requests/%s\n",
		trip.FirstName, order, price, validity,
		strings.TrimRight(n.cfg.AppURL, "/"), trip.ID)

	lines := []string{
		fmt.Sprintf("Hello %s,", html.EscapeString(trip.FirstName)),
		fmt.Sprintf("We have a quotation for your trip request %s.", order),
		fmt.Sprintf("Price: <strong>%s</strong>", html.EscapeString(price)),
	}
	if validity != "" {
		lines = append(lines, html.EscapeString(validity))
	}
	if q.AdditionalInfo != nil && *q.AdditionalInfo != "" {
		lines = append(lines, html.EscapeString(*q.AdditionalInfo))
	}
	lines = append(lines, fmt.Sprintf(`<a href="%s/requests/%s">Review quotation</a>`,
		strings.TrimRight(n.cfg.AppURL, "/"), trip.ID))

	n.dispatch("quotation_sent", Email{
		To:        trip.OwnerEmail,
		ToName:    ownerName,
		Subject:   fmt.Sprintf("Quotation for your trip request %s", order),
		PlainText: plain,
		HTML:      htmlBody(fmt.Sprintf("Quotation for trip request %s", order), lines...),
	})
}

// QuotationResponded notifies the admin team of the customer's decision.
func (n *Notifier) QuotationResponded(q quotation.Quotation, trip quotation.TripSummary, accepted bool) {
	order := fmt.Sprintf("#%d", trip.OrderNumber)
	verb := "rejected"
	if accepted {
		verb = "accepted"
	}

	plain := fmt.Sprintf(
		"The quotation for trip request %s was %s by %s (%s).\n\nPrice: %.2f %s\n\n%s/admin/requests/%s\n",
		order, verb, trip.FirstName, trip.OwnerEmail, q.Price, q.Currency,
		strings.TrimRight(n.cfg.AppURL, "/"), trip.ID)

	n.dispatch("quotation_responded", Email{
		To:        n.cfg.AdminEmail,
		ToName:    "Admin",
		Subject:   fmt.Sprintf("Quotation %s for trip request %s", verb, order),
		PlainText: plain,
		HTML: htmlBody(fmt.Sprintf("Quotation %s", verb),
			fmt.Sprintf("Trip request %s was %s by %s (%s).",
				order, verb, html.EscapeString(trip.FirstName), html.EscapeString(trip.OwnerEmail)),
			fmt.Sprintf("Price: %.2f %s", q.Price, q.Currency),
			fmt.Sprintf(`<a href="%s/admin/requests/%s">Open request</a>`,
				strings.TrimRight(n.cfg.AppURL, "/"), trip.ID)),
	})
}

func htmlBody(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(title))
	for _, line := range lines {
		fmt.Fprintf(&b, "<p>%s</p>", line)
	}
	b.WriteString("</div>")
	return b.String()
}

func displayName(name *string, fallback string) string {
	if name != nil && *name != "" {
		return *name
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02 Jan 2006")
}
