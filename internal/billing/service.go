package billing

import (
	"encoding/json"
	"errors"

	"github.com/miniats/miniats/internal/models"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotConfigured   = errors.New("stripe is not configured")
	ErrInvalidPlan     = errors.New("invalid plan")
	ErrCompanyNotFound = errors.New("company not found")
	ErrNoCustomer      = errors.New("no billing customer for company")
)

// Service bridges companies to the payment provider: checkout and portal
// sessions on the way out, subscription state reconciliation on the way back
// in via webhooks.
type Service struct {
	DB  *gorm.DB
	Log *zap.Logger

	webhookSecret string
	appOrigin     string
	configured    bool
}

func NewService(db *gorm.DB, log *zap.Logger, secretKey, webhookSecret, appOrigin string) *Service {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Service{
		DB:            db,
		Log:           log,
		webhookSecret: webhookSecret,
		appOrigin:     appOrigin,
		configured:    secretKey != "",
	}
}

// CreateCheckout starts a subscription checkout for the company and returns
// the hosted redirect URL. The billing customer is created lazily from the
// company's admin user.
func (s *Service) CreateCheckout(companyID, planID, interval string) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}
	plan := PlanByID(planID)
	if plan == nil {
		return "", ErrInvalidPlan
	}

	var company models.Company
	err := s.DB.Where("id = ?", companyID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCompanyNotFound
	}
	if err != nil {
		return "", err
	}

	customerID, err := s.resolveCustomer(&company)
	if err != nil {
		return "", err
	}

	priceID := plan.StripePriceIDMonthly
	if interval == "year" {
		priceID = plan.StripePriceIDYearly
	}

	metadata := map[string]string{
		"companyId": company.ID,
		"plan":      plan.ID,
	}
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		ClientReferenceID:  stripe.String(company.ID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(s.appOrigin + "/app/settings/billing?success=true"),
		CancelURL:  stripe.String(s.appOrigin + "/app/settings/billing?canceled=true"),
	}
	params.Metadata = metadata

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreatePortal opens the hosted billing portal. Companies that never checked
// out have no customer and get ErrNoCustomer.
func (s *Service) CreatePortal(companyID string) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}

	var company models.Company
	err := s.DB.Where("id = ?", companyID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCompanyNotFound
	}
	if err != nil {
		return "", err
	}
	if company.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(company.StripeCustomerID),
		ReturnURL: stripe.String(s.appOrigin + "/app/settings/billing"),
	})
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (s *Service) resolveCustomer(company *models.Company) (string, error) {
	if company.StripeCustomerID != "" {
		return company.StripeCustomerID, nil
	}

	// Bill the tenant's admin user; fall back to the company name when the
	// admin has no email on file.
	email := company.Name
	var admin models.User
	err := s.DB.Where("company_id = ? AND role = ?", company.ID, models.RoleAdmin).First(&admin).Error
	if err == nil && admin.Email != "" {
		email = admin.Email
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(company.Name),
		Params: stripe.Params{
			Metadata: map[string]string{"companyId": company.ID},
		},
	})
	if err != nil {
		return "", err
	}

	if err := s.DB.Model(company).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	company.StripeCustomerID = cust.ID
	return cust.ID, nil
}

// VerifyWebhook checks the provider signature and parses the event. An empty
// webhook secret is a configuration error, not a pass-through.
func (s *Service) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}

// ProcessEvent reconciles subscription state from a verified webhook event.
// Events are deduped by provider event id: redelivery of an already-applied
// event is a no-op.
func (s *Service) ProcessEvent(event stripe.Event) error {
	var seen int64
	s.DB.Model(&models.ProcessedWebhookEvent{}).Where("id = ?", event.ID).Count(&seen)
	if seen > 0 {
		s.Log.Info("webhook event already processed", zap.String("event_id", event.ID))
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return err
		}
		subscriptionID := ""
		if sess.Subscription != nil {
			subscriptionID = sess.Subscription.ID
		}
		err := s.DB.Model(&models.Company{}).
			Where("id = ?", sess.Metadata["companyId"]).
			Updates(map[string]interface{}{
				"stripe_subscription_id": subscriptionID,
				"plan_id":                sess.Metadata["plan"],
				"subscription_status":    "active",
			}).Error
		if err != nil {
			return err
		}

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		err := s.DB.Model(&models.Company{}).
			Where("stripe_subscription_id = ?", sub.ID).
			Update("subscription_status", string(sub.Status)).Error
		if err != nil {
			return err
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		err := s.DB.Model(&models.Company{}).
			Where("stripe_subscription_id = ?", sub.ID).
			Updates(map[string]interface{}{
				"subscription_status": "canceled",
				"plan_id":             PlanFree,
			}).Error
		if err != nil {
			return err
		}

	default:
		s.Log.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
	}

	return s.DB.Create(&models.ProcessedWebhookEvent{ID: event.ID}).Error
}
