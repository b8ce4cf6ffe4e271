package email

import (
	"context"
	"errors"
	"time"

	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/delivery"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/permission"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("email channel circuit is open")

type Sender interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

// Channel mails the reminder to a fixed recipient through an SES template.
// Calls go through a circuit breaker so a failing SES does not hold up every
// scan with timeouts.
type Channel struct {
	ses Sender
	// This address must be verified with Amazon SES.
	sender    string
	recipient string
	template  string
	breaker   *gobreaker.CircuitBreaker[interface{}]
}

func NewChannel(
	awsConfig aws.Config,
	log logging.Logger,
	sender string,
	recipient string,
	template string,
) *Channel {
	return newChannel(ses.NewFromConfig(awsConfig), log, sender, recipient, template)
}

func newChannel(
	client Sender,
	log logging.Logger,
	sender string,
	recipient string,
	template string,
) *Channel {
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "ses",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warning(
				context.Background(),
				"Email circuit breaker changed state.",
				logging.Entry("name", name),
				logging.Entry("from", from.String()),
				logging.Entry("to", to.String()),
			)
		},
	})
	return &Channel{
		ses:       client,
		sender:    sender,
		recipient: recipient,
		template:  template,
		breaker:   breaker,
	}
}

func (ch *Channel) Name() delivery.ChannelName {
	return delivery.ChannelEmail
}

func (ch *Channel) RequiredPermission() c.Optional[permission.Kind] {
	return c.Optional[permission.Kind]{}
}

func (ch *Channel) Deliver(ctx context.Context, d delivery.Delivery) error {
	templateParamsBytes, err := json.Marshal(
		reminderTemplateParams{
			Message:   d.Reminder.Message,
			TriggerAt: d.Notification.TriggerEpoch.Time().Format(time.RFC1123),
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = ch.breaker.Execute(func() (interface{}, error) {
		return ch.ses.SendTemplatedEmail(
			ctx,
			&ses.SendTemplatedEmailInput{
				Source: &ch.sender,
				Destination: &types.Destination{
					CcAddresses: []string{},
					ToAddresses: []string{ch.recipient},
				},
				Template:     &ch.template,
				TemplateData: &templateParams,
			},
		)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

type reminderTemplateParams struct {
	Message   string `json:"message"`
	TriggerAt string `json:"triggerAt"`
}
