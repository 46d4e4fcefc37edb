package main

import (
	"context"
	"fmt"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/gridshop/functions/core/csql"
	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
	"github.com/gridshop/functions/core/logger"
	"github.com/gridshop/functions/triggers"
)

// Service holds the configuration for the trigger lambda
type Service struct {
	Postgres       string `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	PostgresSchema string `env:"POSTGRES_SCHEMA,default=grid" description:"the database schema"`
}

// handler processes queued document events. Returning an error hands the
// batch back to the platform, whose retry mechanism is the only retry
// boundary; the triggers are not guaranteed idempotent under it.
func newHandler(store docstore.Driver) func(ctx context.Context, sqsEvent awsevents.SQSEvent) error {
	return func(ctx context.Context, sqsEvent awsevents.SQSEvent) error {
		ctx, rlog := logger.ContextWithLogger(ctx)
		for _, message := range sqsEvent.Records {
			var event events.Event
			if err := json.Unmarshal([]byte(message.Body), &event); err != nil {
				rlog.WithError(err).Errorln("cannot decode event", message.MessageId)
				continue // poison message, do not retry
			}

			var err error
			switch {
			case event.Resource == "users" && event.Operation == events.OperationCreate:
				var user triggers.UserRecord
				if err = json.Unmarshal(event.Payload, &user); err == nil {
					err = triggers.UserOnCreate(ctx, store, user)
				}
			case event.Resource == "reviews" && event.Operation == events.OperationCreate:
				err = triggers.ReviewOnCreate(ctx, event)
			default:
				rlog.Debugln("no trigger for", event.Resource, event.Operation)
			}
			if err != nil {
				return fmt.Errorf("trigger %s %s failed: %w", event.Resource, event.Operation, err)
			}
		}
		return nil
	}
}

func main() {
	logger.InitLogger(logrus.InfoLevel)

	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	db, err := csql.OpenWithSchema(service.Postgres, service.PostgresSchema)
	if err != nil {
		panic(err)
	}
	store, err := docstore.NewPostgres(db)
	if err != nil {
		panic(err)
	}

	lambda.Start(newHandler(store))
}
