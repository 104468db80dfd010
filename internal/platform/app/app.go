// Package app は設定からユースケースとルーターを組み立てます。
// Lambda のコールドスタート時と開発サーバーの起動時に一度だけ呼ばれます。
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw/handler"
	"github.com/ogurasousui/philocom-backoffice/internal/adapters/cognito"
	"github.com/ogurasousui/philocom-backoffice/internal/adapters/repository/dynamo"
	"github.com/ogurasousui/philocom-backoffice/internal/adapters/repository/postgres"
	"github.com/ogurasousui/philocom-backoffice/internal/adapters/ses"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/awsclient"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/config"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

// EmployeeStore は社員ユースケース、認可、メール宛先解決が共有する社員ストアです。
type EmployeeStore interface {
	employee.Repository
	access.EmployeeFinder
}

// Stores はレコードストアの集合です。
type Stores struct {
	Employees EmployeeStore
	Contacts  contact.Repository
	Projects  project.Repository
	Posts     blog.Repository
	Emails    mailbox.Repository
	Tx        employee.TransactionManager
}

// App は組み立て済みのユースケースです。
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	authz     *access.Authorizer
	resolver  *access.Resolver
	employees employee.UseCase
	contacts  contact.UseCase
	projects  project.UseCase
	posts     blog.UseCase
	mailbox   mailbox.UseCase

	closers []func()
}

// Options は外部サービスの差し替え用です。nil のフィールドは設定から生成します。
type Options struct {
	Stores      *Stores
	Provisioner employee.IdentityProvisioner
	Sender      mailbox.Sender
}

// New は設定に従って App を生成します。
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	return NewWithOptions(ctx, cfg, logger, Options{})
}

// NewWithOptions は一部の依存を差し替えて App を生成します。
func NewWithOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{cfg: cfg, logger: logger}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		loaded, err := awsclient.Load(ctx, cfg.AWS)
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &loaded
		return loaded, nil
	}

	stores := opts.Stores
	if stores == nil {
		built, err := a.openStores(ctx, loadAWS)
		if err != nil {
			a.Close()
			return nil, err
		}
		stores = built
	}

	provisioner := opts.Provisioner
	if provisioner == nil && cfg.Auth.UserPoolID != "" {
		awsConf, err := loadAWS()
		if err != nil {
			a.Close()
			return nil, err
		}
		provisioner = cognito.NewProvisioner(cip.NewFromConfig(awsConf), cfg.Auth.UserPoolID, cfg.Auth.EmployeeGroup)
	}

	sender := opts.Sender
	if sender == nil && cfg.Mail.SESEnabled {
		awsConf, err := loadAWS()
		if err != nil {
			a.Close()
			return nil, err
		}
		sender = ses.NewSender(sesv2.NewFromConfig(awsConf), cfg.Mail.From)
	}

	a.authz = access.NewAuthorizer(access.Options{
		EmployeeGroup:       cfg.Auth.EmployeeGroup,
		AdminGroup:          cfg.Auth.AdminGroup,
		AllowHeaderIdentity: cfg.Auth.AllowHeaderIdentity,
		HeaderName:          cfg.Auth.HeaderName,
	})
	a.resolver = access.NewResolver(a.authz, stores.Employees)
	a.employees = employee.NewService(stores.Employees, nil, stores.Tx, provisioner)
	a.contacts = contact.NewService(stores.Contacts, nil)
	a.projects = project.NewService(stores.Projects, nil)
	a.posts = blog.NewService(stores.Posts, nil)
	a.mailbox = mailbox.NewService(stores.Emails, stores.Employees, sender, nil)

	if a.authz.HeaderIdentityEnabled() {
		logger.Warn("unsigned header identity is enabled", slog.String("header", cfg.Auth.HeaderName))
	}
	logger.Info("application initialized",
		slog.String("store", cfg.Store.Driver),
		slog.Bool("cognito", provisioner != nil),
		slog.Bool("ses", sender != nil),
	)
	return a, nil
}

func (a *App) openStores(ctx context.Context, loadAWS func() (aws.Config, error)) (*Stores, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgdb.Open(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("app: open postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		return &Stores{
			Employees: postgres.NewEmployeeRepository(pool),
			Contacts:  postgres.NewContactRepository(pool),
			Projects:  postgres.NewProjectRepository(pool),
			Posts:     postgres.NewPostRepository(pool),
			Emails:    postgres.NewEmailRepository(pool),
			Tx:        pgdb.NewTxManager(pool),
		}, nil
	case config.DriverDynamoDB:
		awsConf, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := dynamoapi.NewClient(awsConf, a.cfg.AWS.DynamoDBEndpoint)
		tables := a.cfg.AWS.Tables

		return &Stores{
			Employees: dynamo.NewEmployeeRepository(client, tables.Employees),
			Contacts:  dynamo.NewContactRepository(client, tables.Contacts),
			Projects:  dynamo.NewProjectRepository(client, tables.Projects),
			Posts:     dynamo.NewPostRepository(client, tables.BlogPosts),
			Emails:    dynamo.NewEmailRepository(client, tables.Emails),
		}, nil
	default:
		return nil, fmt.Errorf("app: unsupported store driver %q", a.cfg.Store.Driver)
	}
}

// Close は保持している接続を解放します。
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newRouter() *apigw.Router {
	cors := apigw.NewCORS(a.cfg.CORS.AllowedOrigins, a.cfg.CORS.DefaultOrigin, a.cfg.Auth.HeaderName)
	return apigw.NewRouter(cors, a.logger)
}

func (a *App) registerAdmin(r *apigw.Router) {
	handler.NewAdminHandler(a.authz, a.employees, a.contacts, a.projects, a.posts).Register(r)
}

func (a *App) registerEmployee(r *apigw.Router) {
	handler.NewEmployeeHandler(a.resolver, a.employees, a.mailbox, a.logger).Register(r)
}

func (a *App) registerPublic(r *apigw.Router) {
	handler.NewPublicHandler(a.contacts, a.projects, a.posts).Register(r)
}

// AdminRouter は admin-api 関数のルーターです。
func (a *App) AdminRouter() *apigw.Router {
	r := a.newRouter()
	a.registerAdmin(r)
	return r
}

// EmployeeRouter は employee-api 関数のルーターです。
func (a *App) EmployeeRouter() *apigw.Router {
	r := a.newRouter()
	a.registerEmployee(r)
	return r
}

// PublicRouter は public-api 関数のルーターです。
func (a *App) PublicRouter() *apigw.Router {
	r := a.newRouter()
	a.registerPublic(r)
	return r
}

// Router はすべてのルートを 1 つにまとめたルーターです。開発サーバーで使います。
func (a *App) Router() *apigw.Router {
	r := a.newRouter()
	a.registerAdmin(r)
	a.registerEmployee(r)
	a.registerPublic(r)
	return r
}
