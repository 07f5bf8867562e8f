package httpserver

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/nipponhub/storefront/internal/domain"
)

// Notifier sends the staff notification email after a checkout.
type Notifier struct {
	host string
	port int
	user string
	pass string
	to   string
}

func NewNotifier() *Notifier {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	return &Notifier{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		to:   os.Getenv("ORDER_NOTIFY_EMAIL"),
	}
}

func (n *Notifier) OrderPlaced(o *domain.ClientOrder) error {
	if n.host == "" || n.port == 0 || n.user == "" {
		log.Warn().Msg("SMTP not configured, skipping order email")
		return nil
	}
	to := n.to
	if to == "" {
		to = n.user
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\n", o.ID)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", o.Name, o.Email, o.Phone)
	fmt.Fprintf(&b, "Ship to: %s, %s %s (%s)\n", o.Address, o.PostalCode, o.City, o.Country)
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d $%.2f\n", it.Title, it.Quantity, it.UnitPrice)
	}
	fmt.Fprintf(&b, "Total: $%.2f\n", o.Total)
	fmt.Fprintf(&b, "Tracking: %s\n", o.TrackingLink)

	m := gomail.NewMessage()
	m.SetHeader("From", n.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New order #%s", o.ID.String()[:8]))
	m.SetBody("text/plain", b.String())

	return gomail.NewDialer(n.host, n.port, n.user, n.pass).DialAndSend(m)
}
