// Command reserve books a room from the terminal through the reservation API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hoteljan/hotel-booking/internal/client"
	"github.com/hoteljan/hotel-booking/internal/config"
	"github.com/hoteljan/hotel-booking/internal/reservation"
)

type options struct {
	list          bool
	roomID        string
	checkIn       string
	checkOut      string
	name          string
	email         string
	phone         string
	guests        int
	special       string
	loginEmail    string
	loginPassword string
	invoiceDir    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("reserve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.list, "list", false, "list rooms and exit")
	fs.StringVar(&o.roomID, "room", "", "room id (default: first room)")
	fs.StringVar(&o.checkIn, "check-in", "", "check-in date, YYYY-MM-DD")
	fs.StringVar(&o.checkOut, "check-out", "", "check-out date, YYYY-MM-DD")
	fs.StringVar(&o.name, "name", "", "guest name")
	fs.StringVar(&o.email, "email", "", "guest email")
	fs.StringVar(&o.phone, "phone", "", "guest phone")
	fs.IntVar(&o.guests, "guests", reservation.MinGuests, "number of guests")
	fs.StringVar(&o.special, "special", "", "special requests")
	fs.StringVar(&o.loginEmail, "login-email", "", "sign in before booking")
	fs.StringVar(&o.loginPassword, "login-password", "", "password for -login-email")
	fs.StringVar(&o.invoiceDir, "invoice", "", "directory to save the invoice PDF to (requires login)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if (o.checkIn == "") != (o.checkOut == "") {
		return o, errors.New("-check-in and -check-out must be given together")
	}
	if o.invoiceDir != "" && o.loginEmail == "" {
		return o, errors.New("-invoice requires -login-email")
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	c, err := client.New(cfg.APIBaseURL, nil)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	if err := run(ctx, c, o, time.Now, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *client.Client, o options, now func() time.Time, out io.Writer) error {
	var session *client.Session
	if o.loginEmail != "" {
		s, err := c.Login(ctx, o.loginEmail, o.loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		session = s
		defer session.Logout()
		fmt.Fprintf(out, "Signed in as %s\n", s.User.Email)
		if o.email == "" {
			o.email = s.User.Email
		}
		if o.name == "" {
			o.name = s.User.DisplayName
		}
	}

	wiz := reservation.NewWizard(client.ReservationAPI{Client: c, Session: session}, now)
	loadErr := wiz.Load(ctx)
	if loadErr != nil {
		msg, _ := wiz.Message()
		loadErr = fmt.Errorf("%s: %w", msg, loadErr)
		// Without a room list nothing below can run.
		if len(wiz.Rooms()) == 0 {
			return loadErr
		}
	}

	if o.list {
		printRooms(out, wiz.Rooms())
		return nil
	}

	if loadErr != nil && o.roomID == "" {
		return loadErr
	}
	if o.roomID != "" {
		if err := wiz.SelectRoom(ctx, o.roomID); err != nil {
			return fmt.Errorf("select room %s: %w", o.roomID, err)
		}
	}
	selected := wiz.SelectedRoom()
	if selected == nil {
		return errors.New("no rooms available")
	}
	fmt.Fprintf(out, "Room: %s (%s), %s per night\n", selected.Name, selected.Category, reservation.FormatPrice(selected.NightlyPrice))

	disabled := wiz.DisabledDates().Sorted()
	if len(disabled) == 0 {
		fmt.Fprintln(out, "Unavailable dates: none")
	} else {
		fmt.Fprintf(out, "Unavailable dates: %s\n", strings.Join(disabled, ", "))
	}

	if o.checkIn == "" {
		return nil
	}

	stay, err := reservation.ParseDateRange(o.checkIn, o.checkOut)
	if err != nil {
		return err
	}
	if err := wiz.SelectDates(stay.Start, stay.End); err != nil {
		return err
	}
	wiz.SetContact(o.name, o.email, o.phone)
	wiz.SetGuests(o.guests)
	wiz.SetSpecialRequests(o.special)

	q := wiz.Quote()
	fmt.Fprintf(out, "Quote: %d night(s) x %s = %s (estimate, taxes included)\n",
		q.Nights, reservation.FormatPrice(q.NightlyPrice), reservation.FormatPrice(q.Total))

	conf, err := wiz.Submit(ctx)
	msg, _ := wiz.Message()
	if err != nil {
		return errors.New(msg)
	}
	fmt.Fprintln(out, msg)

	total, _ := wiz.Total()
	fmt.Fprintf(out, "Booking %s: %s to %s, %d night(s), total %s, status %s\n",
		conf.BookingNumber,
		reservation.FormatDate(conf.CheckIn),
		reservation.FormatDate(conf.CheckOut),
		conf.Nights,
		reservation.FormatPrice(total),
		conf.Status,
	)

	if o.invoiceDir != "" {
		pdf, filename, err := c.FetchInvoice(ctx, session, conf.ID)
		if err != nil {
			return fmt.Errorf("fetch invoice: %w", err)
		}
		path := filepath.Join(o.invoiceDir, filepath.Base(filename))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		fmt.Fprintf(out, "Invoice saved to %s\n", path)
	}
	return nil
}

func printRooms(out io.Writer, rooms []reservation.Room) {
	if len(rooms) == 0 {
		fmt.Fprintln(out, "No rooms.")
		return
	}
	for _, r := range rooms {
		fmt.Fprintf(out, "%s  %-8s  %12s  %s\n", r.ID, r.Category, reservation.FormatPrice(r.NightlyPrice), r.Name)
	}
}
