//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/infra/db"
	"github.com/kakeibo/backend/internal/infra/dependency"
	"github.com/kakeibo/backend/internal/integration/persistence/model"
	"github.com/kakeibo/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// testContext holds the state of one scenario.
type testContext struct {
	uri      string
	headers  map[string]string
	client   *http.Client
	response *response

	accessToken   string
	refreshToken  string
	loginToken    string
	currentUserID uuid.UUID
	lastID        string
}

type response struct {
	status int
	body   any
}

var (
	serverInit     sync.Once
	testServerPort int
	testDB         *mock.Db
	resendMock     *mock.Resend
	redisMock      *mock.Redis
	clock          *mock.Clock
	classifier     = &stubSuggester{}
)

// stubSuggester stands in for Gemini; scenarios choose its answer.
type stubSuggester struct {
	mu     sync.Mutex
	answer string
	err    error
}

func (s *stubSuggester) SuggestCategory(ctx context.Context, description string, candidates []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answer, s.err
}

func (s *stubSuggester) IsAvailable() bool { return true }

func (s *stubSuggester) set(answer string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer, s.err = answer, err
}

// InitializeTestSuite sets up resources shared by all scenarios.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)

		testServerPort = findAvailablePort()
		_ = os.Setenv("ENV", "test")

		var err error
		testDB, err = mock.NewDb(&model.UserModel{}, &model.RefreshTokenModel{}, &model.TransactionModel{})
		if err != nil {
			panic(fmt.Sprintf("failed to set up test database: %v", err))
		}

		resendMock = mock.NewResend()
		redisMock = mock.NewRedis()
		clock = mock.NewClock()
	})

	ctx.AfterSuite(func() {
		resendMock.Close()
		redisMock.Close()
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^the current date is "([^"]*)"$`, test.theCurrentDateIs)

	// User setup steps
	ctx.Given(`^a user exists with email "([^"]*)"$`, test.aUserExistsWithEmail)
	ctx.Given(`^a user exists with email "([^"]*)" and password "([^"]*)"$`, test.aUserExistsWithEmailAndPassword)
	ctx.Given(`^I am logged in as "([^"]*)"$`, test.iAmLoggedInAs)

	// Ledger setup steps
	ctx.Given(`^a transaction exists on "([^"]*)" for "([^"]*)" with amount (-?\d+) and category "([^"]*)"$`, test.aTransactionExists)
	ctx.Given(`^the classifier answers "([^"]*)"$`, test.theClassifierAnswers)
	ctx.Given(`^the classifier is failing$`, test.theClassifierIsFailing)
	ctx.Given(`^the email provider answers with status (\d+)$`, test.theEmailProviderAnswersWithStatus)
	ctx.Step(`^(\d+) minutes pass$`, test.minutesPass)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)

	// Email assertion steps, also used to capture the link token mid-scenario
	ctx.Step(`^a sign-in email should have been sent to "([^"]*)"$`, test.aSignInEmailShouldHaveBeenSentTo)
	ctx.Step(`^no email should have been sent$`, test.noEmailShouldHaveBeenSent)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func (t *testContext) before() error {
	t.uri = fmt.Sprintf("http://localhost:%d", testServerPort)
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.refreshToken = ""
	t.loginToken = ""
	t.currentUserID = uuid.Nil
	t.lastID = ""

	classifier.set("食費", nil)
	clock.Set(time.Now())
	resendMock.Reset()

	if err := redisMock.Flush(); err != nil {
		return err
	}
	return testDB.Reset()
}

func (t *testContext) startServer() error {
	var startErr error
	serverInit.Do(func() {
		cfg := &config.Config{
			Server: config.ServerConfig{Environment: "test", Port: testServerPort},
			JWT: config.JWTConfig{
				Secret:             testJWTSecret,
				AccessTokenExpiry:  15 * time.Minute,
				RefreshTokenExpiry: 7 * 24 * time.Hour,
			},
			Email: config.EmailConfig{
				ResendAPIKey:  "re_test",
				ResendBaseURL: resendMock.URL(),
				FromName:      "Kakeibo",
				FromEmail:     "noreply@kakeibo.test",
				AppBaseURL:    "http://kakeibo.test",
				LoginLinkTTL:  15 * time.Minute,
			},
		}

		injector := dependency.NewInjector(cfg, db.Wrap(testDB.Conn), redisMock.Client, dependency.Options{
			Suggester: classifier,
			Clock:     clock.Now,
		})
		engine := injector.Router.Setup(cfg.Server.Environment)

		listener, err := net.Listen("tcp", ":"+strconv.Itoa(testServerPort))
		if err != nil {
			startErr = err
			return
		}
		go func() {
			_ = http.Serve(listener, engine)
		}()
	})
	if startErr != nil {
		return startErr
	}

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(t.uri + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("api server did not become ready on port %d", testServerPort)
}
