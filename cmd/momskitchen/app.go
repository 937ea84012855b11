package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"momskitchen/internal/api"
	"momskitchen/internal/cart"
	"momskitchen/internal/config"
	"momskitchen/internal/database"
	"momskitchen/internal/gate"
	"momskitchen/internal/logging"
	"momskitchen/internal/repository"
	"momskitchen/internal/security"
	"momskitchen/internal/service"
	"momskitchen/internal/session"
)

// app is the wired client for one command invocation
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *database.DB

	sessions *session.Store
	cart     *cart.Store
	client   *api.Client

	auth      *service.AuthService
	profile   *service.ProfileService
	addresses *service.AddressService
	menus     *service.MenuService
	orders    *service.OrderService
	checkout  *service.CheckoutService
	support   *service.SupportService

	ordering     *gate.Monitor
	cancellation *gate.Monitor

	in  *bufio.Reader
	out io.Writer
}

func newApp(ctx context.Context, in io.Reader, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.WithField("db_type", cfg.DatabaseType).Debug("Local store ready")

	storage := repository.NewStorageRepository(db)

	var sealer *security.Sealer
	if cfg.SessionEncryptionKey != "" {
		sealer = security.NewSealer(cfg.SessionEncryptionKey)
	}
	sessions := session.NewStore(repository.NewSessionRepository(storage, sealer), logger)
	sessions.Load(ctx)

	cartStore := cart.NewStore(repository.NewCartRepository(storage), logger)
	cartStore.Load(ctx)

	client, err := api.New(api.Config{
		BaseURL:    cfg.BackendURL,
		UserRole:   cfg.UserRole,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Tokens:     sessions,
		Logger:     logger,
	})
	if err != nil {
		cartStore.Close()
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      logger,
		db:       db,
		sessions: sessions,
		cart:     cartStore,
		client:   client,
		in:       bufio.NewReader(in),
		out:      out,
	}

	policy := gate.ParsePolicy(cfg.WindowPolicy)
	notifier := gate.NotifierFunc(func(message string) {
		fmt.Fprintf(a.out, "\n%s\n", message)
	})
	a.ordering = gate.NewMonitor(gate.New(gate.Options{
		Name:     "ordering",
		Policy:   policy,
		Cart:     cartStore,
		Notifier: notifier,
		Logger:   logger,
	}), client.Settings(), gate.OrderingWindows, cfg.GatePollInterval, logger)
	a.cancellation = gate.NewMonitor(gate.New(gate.Options{
		Name:   "cancellation",
		Policy: policy,
		Logger: logger,
	}), client.Settings(), gate.CancellationWindows, cfg.GatePollInterval, logger)

	pricing, err := service.ParseCheckoutConfig(cfg.DeliveryFee, cfg.TaxRate)
	if err != nil {
		a.close()
		return nil, err
	}

	a.support, err = service.NewSupportService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.SupportEmail, logger)
	if err != nil {
		logger.WithError(err).Warn("Support escalation unavailable")
		a.support = nil
	}

	a.auth = service.NewAuthService(client, sessions, cfg.UserRole, cfg.OTPResendInterval, logger)
	a.profile = service.NewProfileService(client, sessions, logger)
	a.addresses = service.NewAddressService(client, logger)
	a.menus = service.NewMenuService(client, cartStore, logger)
	a.orders = service.NewOrderService(client, a.cancellation, logger)

	opts := []service.CheckoutOption{
		service.WithPaymentConfirmer(&terminalConfirmer{app: a}),
		service.WithCustomer(func() (string, string) {
			if u := sessions.Snapshot().User; u != nil {
				return u.ID, u.PhoneNumber
			}
			return "", ""
		}),
	}
	if a.support != nil {
		opts = append(opts, service.WithEscalator(a.support))
	}
	a.checkout = service.NewCheckoutService(client, cartStore, a.ordering, pricing, logger, opts...)

	return a, nil
}

// close stops the monitors and waits for the cart to reach disk
func (a *app) close() {
	a.ordering.Deactivate()
	a.cancellation.Deactivate()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.cart.Flush(ctx); err != nil {
		a.log.WithError(err).Warn("Failed to save cart")
	}
	a.cart.Close()
	a.db.Close()
}

// requireLogin fails the command when nobody is signed in
func (a *app) requireLogin() error {
	if !a.sessions.Snapshot().IsAuthenticated() {
		return &service.UserError{Message: "Please log in first: momskitchen login --phone <number>", Err: service.ErrNotLoggedIn}
	}
	return nil
}

// prompt prints label and reads one trimmed line
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; only "y" or "yes" count as yes
func (a *app) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// runE wires a command body to a freshly built app
func runE(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

// terminalConfirmer hands the payment to the customer and waits for them to finish it
type terminalConfirmer struct {
	app *app
}

func (c *terminalConfirmer) ConfirmPayment(ctx context.Context, handle service.PaymentHandle) error {
	fmt.Fprintf(c.app.out, "\nPay ₹%s in the Mom's Kitchen app or payment page.\n", handle.Amount.StringFixed(2))
	fmt.Fprintf(c.app.out, "Payment reference: %s\n", handle.PaymentIntentID)

	answer, err := c.app.prompt("Type 'paid' once the payment has gone through, or press Enter to cancel: ")
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !strings.EqualFold(answer, "paid") {
		return service.ErrPaymentCancelled
	}
	return nil
}
