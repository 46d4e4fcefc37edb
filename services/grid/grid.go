package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/gridshop/functions/api"
	"github.com/gridshop/functions/core/access"
	"github.com/gridshop/functions/core/assets"
	"github.com/gridshop/functions/core/csql"
	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
	"github.com/gridshop/functions/core/logger"
	"github.com/gridshop/functions/core/report"
	"github.com/gridshop/functions/triggers"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type Service struct {
	Postgres       string `env:"POSTGRES" description:"the connection string for the Postgres DB; in-memory store when empty"`
	PostgresSchema string `env:"POSTGRES_SCHEMA,default=grid" description:"the database schema"`
	Environment    string `env:"ENVIRONMENT,default=staging" description:"selects the asset storage folder, production or staging"`
	Port           string `env:"PORT,default=3000" description:"the HTTP listen port"`

	JwtIssuer           string `env:"JWT_ISSUER,required" description:"the accepted issuer for bearer tokens"`
	JwtCertificatesFile string `env:"JWT_CERTIFICATES_FILE,required" description:"JSON file mapping key ids to PEM public keys"`

	S3Bucket    string `env:"S3_BUCKET" description:"the asset bucket; in-memory asset host when empty"`
	S3Region    string `env:"S3_REGION,default=eu-central-1"`
	S3AccessID  string `env:"S3_ACCESS_ID"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`

	SQSQueueURL  string `env:"SQS_ERROR_QUEUE_URL" description:"queue for error records; process log sink when empty"`
	KafkaBrokers string `env:"KAFKA_BROKERS" description:"comma-separated kafka brokers for document events; in-process dispatch when empty"`
	KafkaTopic   string `env:"KAFKA_TOPIC,default=grid-events"`

	// TestMode enables the uid authentication bypass on /add-product.
	// SECURITY: must never be set in a production configuration.
	TestMode bool `env:"TEST_MODE,default=false"`
}

var initOnce sync.Once

func main() {
	logger.InitLogger(logrus.InfoLevel)
	rlog := logger.Default()

	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	if service.TestMode && service.Environment == "production" {
		panic("TEST_MODE must not be enabled in production")
	}

	var router *mux.Router
	var dispatcher *events.Dispatcher
	initOnce.Do(func() {
		router, dispatcher = initialize(service)
	})
	defer dispatcher.Close()

	if service.TestMode {
		rlog.Warningln("TEST MODE ENABLED: /add-product authenticates from the uid body field")
	}

	rlog.Infoln("listen on port :" + service.Port)
	server := &http.Server{
		Addr:    ":" + service.Port,
		Handler: handlers.LoggingHandler(os.Stdout, router),
		// platform parity: the serverless original caps requests at 540s
		ReadTimeout:  540 * time.Second,
		WriteTimeout: 540 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		rlog.WithError(err).Fatalln("server stopped")
	}
}

// initialize wires all collaborators exactly once and returns the ready
// router. Dependencies are passed by injection, there is no ambient
// global state besides the process configuration.
func initialize(service *Service) (*mux.Router, *events.Dispatcher) {
	store := newStore(service)
	host := newAssetHost(service)
	verifier := newVerifier(service)
	reporter := report.NewReporter(newSink(service))

	dispatcher := events.NewDispatcher(4)
	triggers.Register(dispatcher, store)

	var notifier events.Notifier = dispatcher
	if service.KafkaBrokers != "" {
		notifier = events.NewKafkaNotifier(strings.Split(service.KafkaBrokers, ","), service.KafkaTopic)
	}

	router := mux.NewRouter()
	api.MustNewAPI(&api.Builder{
		Router:      router,
		Store:       store,
		Assets:      host,
		Verifier:    verifier,
		Reporter:    reporter,
		Notifier:    notifier,
		Environment: service.Environment,
		TestMode:    service.TestMode,
	})
	return router, dispatcher
}

func newStore(service *Service) docstore.Driver {
	if service.Postgres == "" {
		logger.Default().Warningln("no POSTGRES configured, using in-memory document store")
		return docstore.NewMemory()
	}
	db, err := csql.OpenWithSchema(service.Postgres, service.PostgresSchema)
	if err != nil {
		panic(err)
	}
	store, err := docstore.NewPostgres(db)
	if err != nil {
		panic(err)
	}
	return store
}

func newAssetHost(service *Service) assets.Host {
	if service.S3Bucket == "" {
		logger.Default().Warningln("no S3_BUCKET configured, using in-memory asset host")
		return assets.NewMemory()
	}
	host, err := assets.NewS3(assets.S3Configuration{
		AWSBucketName: service.S3Bucket,
		AWSRegion:     service.S3Region,
		AccessID:      service.S3AccessID,
		AccessKey:     service.S3AccessKey,
	})
	if err != nil {
		panic(err)
	}
	return host
}

func newVerifier(service *Service) access.TokenVerifier {
	data, err := os.ReadFile(service.JwtCertificatesFile)
	if err != nil {
		panic(err)
	}
	var certificates map[string]string
	if err := json.Unmarshal(data, &certificates); err != nil {
		panic(err)
	}
	verifier, err := access.NewJwtVerifier(&access.JwtVerifierBuilder{
		Certificates: certificates,
		Issuer:       service.JwtIssuer,
	})
	if err != nil {
		panic(err)
	}
	return verifier
}

func newSink(service *Service) report.Sink {
	if service.SQSQueueURL == "" {
		return report.LogSink{}
	}
	config, err := awsconfig.LoadDefaultConfig(
		context.TODO(),
		awsconfig.WithRegion(service.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(service.S3AccessID, service.S3AccessKey, "")),
	)
	if err != nil {
		panic(err)
	}
	return report.NewSQSSink(config, service.SQSQueueURL)
}
