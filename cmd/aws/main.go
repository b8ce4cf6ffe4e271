package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/caarlos0/env/v6"
)

const (
	reminderSubject = "Reminder: {{message}}"
	reminderHTML    = "<p>{{message}}</p><p><small>Scheduled for {{triggerAt}}</small></p>"
	reminderText    = "{{message}}\n\nScheduled for {{triggerAt}}"
)

type config struct {
	AwsRegion                string `env:"AWS_REGION" envDefault:"eu-central-1"`
	AwsAccessKey             string `env:"AWS_ACCESS_KEY,required"`
	AwsSecretKey             string `env:"AWS_SECRET_KEY,required"`
	AwsEmailSender           string `env:"AWS_EMAIL_SENDER"`
	AwsEmailReminderTemplate string `env:"AWS_EMAIL_REMINDER_TEMPLATE" envDefault:"reminder"`
}

// Manages the SES template used by the e-mail delivery channel.
//
//	aws create | delete | send -to someone@example.com
func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: aws create | delete | send -to <address>")
	}
	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		exit(err)
	}
	svc := ses.NewFromConfig(loadAwsConfig(cfg))

	switch os.Args[1] {
	case "create":
		createEmailTemplate(svc, cfg.AwsEmailReminderTemplate)
	case "delete":
		deleteEmailTemplate(svc, cfg.AwsEmailReminderTemplate)
	case "send":
		cmd := flag.NewFlagSet("send", flag.ExitOnError)
		to := cmd.String("to", "", "recipient address")
		cmd.Parse(os.Args[2:]) //nolint:errcheck
		if *to == "" || cfg.AwsEmailSender == "" {
			exit(fmt.Errorf("-to and AWS_EMAIL_SENDER must be set"))
		}
		sendEmailTemplate(svc, cfg.AwsEmailSender, *to, cfg.AwsEmailReminderTemplate)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadAwsConfig(cfg config) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	if err != nil {
		exit(err)
	}
	return awsCfg
}

func createEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.CreateTemplate(context.Background(), &ses.CreateTemplateInput{
		Template: &types.Template{
			SubjectPart:  aws.String(reminderSubject),
			HtmlPart:     aws.String(reminderHTML),
			TextPart:     aws.String(reminderText),
			TemplateName: &name,
		},
	})
	if err != nil {
		exit(err)
	}
	fmt.Println("Success:")
	fmt.Println(result)
}

func deleteEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.DeleteTemplate(context.Background(), &ses.DeleteTemplateInput{TemplateName: &name})
	if err != nil {
		exit(err)
	}
	fmt.Println("Success:")
	fmt.Println(result)
}

func sendEmailTemplate(svc *ses.Client, sender string, to string, name string) {
	args := `{"message": "Test reminder", "triggerAt": "now"}`
	result, err := svc.SendTemplatedEmail(
		context.Background(),
		&ses.SendTemplatedEmailInput{
			// This address must be verified with Amazon SES.
			Source: &sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{to},
			},
			Template:     &name,
			TemplateData: &args,
		},
	)
	if err != nil {
		exit(err)
	}
	fmt.Println("Success:")
	fmt.Println(result)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
