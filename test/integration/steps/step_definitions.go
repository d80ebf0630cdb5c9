//go:build integration

package steps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kakeibo/backend/internal/integration/persistence/model"
)

const defaultPassword = "DefaultPass123!"

var loginTokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

func (t *testContext) theAPIServerIsRunning() error {
	return t.startServer()
}

func (t *testContext) theCurrentDateIs(date string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return err
	}
	clock.Set(day.Add(12 * time.Hour))
	return nil
}

func (t *testContext) aUserExistsWithEmail(email string) error {
	return t.createUser(email, defaultPassword, "Test User")
}

func (t *testContext) aUserExistsWithEmailAndPassword(email, password string) error {
	return t.createUser(email, password, "Test User")
}

func (t *testContext) createUser(email, password, name string) error {
	userID := uuid.New()
	t.currentUserID = userID

	user := &model.UserModel{
		ID:           userID,
		Email:        email,
		Name:         name,
		PasswordHash: hashPassword(password),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	result := testDB.Conn.Create(user)
	return result.Error
}

func hashPassword(password string) string {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash password: %v", err))
	}
	return string(hashedBytes)
}

// iAmLoggedInAs signs in through the API as email, creating the user with
// the default password first when needed.
func (t *testContext) iAmLoggedInAs(email string) error {
	var user model.UserModel
	if err := testDB.Conn.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := t.createUser(email, defaultPassword, "Test User"); err != nil {
			return err
		}
	} else {
		t.currentUserID = user.ID
	}

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, defaultPassword)
	t.accessToken = ""
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/login", []byte(body)); err != nil {
		return err
	}
	if t.response.status != http.StatusOK {
		return fmt.Errorf("login as %s failed with %d: %v", email, t.response.status, t.response.body)
	}

	fields, _ := t.response.body.(map[string]any)
	t.accessToken, _ = fields["access_token"].(string)
	t.refreshToken, _ = fields["refresh_token"].(string)
	t.response = nil
	return nil
}

func (t *testContext) aTransactionExists(date, description string, amount int64, category string) error {
	if t.currentUserID == uuid.Nil {
		return errors.New("no current user, add a user step first")
	}
	return testDB.Conn.Create(&model.TransactionModel{
		ID:          uuid.New(),
		UserID:      t.currentUserID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}).Error
}

func (t *testContext) theClassifierAnswers(answer string) error {
	classifier.set(answer, nil)
	return nil
}

func (t *testContext) theClassifierIsFailing() error {
	classifier.set("", errors.New("gemini unavailable"))
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = "" // Clear access token to simulate unauthenticated request
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = t.replaceTokenPlaceholders(value)
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	path = t.replaceTokenPlaceholders(path)
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	path = t.replaceTokenPlaceholders(path)

	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replaceTokenPlaceholders(body.Content))
	}
	return t.executeRequest(method, path, payload)
}

func (t *testContext) replaceTokenPlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{refresh_token}}", t.refreshToken)
	content = strings.ReplaceAll(content, "{{access_token}}", t.accessToken)
	content = strings.ReplaceAll(content, "{{login_token}}", t.loginToken)
	content = strings.ReplaceAll(content, "{{user_id}}", t.currentUserID.String())
	content = strings.ReplaceAll(content, "{{last_id}}", t.lastID)
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.uri+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{status: resp.StatusCode}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = responseBody

	if id, ok := responseBody["id"].(string); ok {
		t.lastID = id
	}
	// Token pairs from refresh replace the ones in use.
	if token, ok := responseBody["refresh_token"].(string); ok && token != "" {
		t.refreshToken = token
	}

	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(map[string]any); !ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != t.replaceTokenPlaceholders(expectedValue) {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if getFieldValue(body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	items, ok := getFieldValue(body, field).([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, body)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) jsonBody() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

// aSignInEmailShouldHaveBeenSentTo checks the last message the Resend fake
// accepted and keeps its link token for later steps.
func (t *testContext) aSignInEmailShouldHaveBeenSentTo(recipient string) error {
	sent := resendMock.Sent()
	if len(sent) == 0 {
		return errors.New("no email was sent")
	}
	last := sent[len(sent)-1]

	if len(last.To) != 1 || last.To[0] != recipient {
		return fmt.Errorf("expected email to %s, got %v", recipient, last.To)
	}

	match := loginTokenPattern.FindStringSubmatch(last.Text)
	if match == nil {
		return fmt.Errorf("no sign-in link in email body: %s", last.Text)
	}
	if !strings.Contains(last.HTML, match[1]) {
		return errors.New("html body does not carry the same sign-in link")
	}
	t.loginToken = match[1]
	return nil
}

func (t *testContext) noEmailShouldHaveBeenSent() error {
	if sent := resendMock.Sent(); len(sent) != 0 {
		return fmt.Errorf("expected no email, got %d: %+v", len(sent), sent)
	}
	return nil
}

func (t *testContext) theEmailProviderAnswersWithStatus(status int) error {
	resendMock.FailWith(status)
	return nil
}

// minutesPass moves both the API clock and redis key expiry forward.
func (t *testContext) minutesPass(minutes int) error {
	d := time.Duration(minutes) * time.Minute
	clock.Set(clock.Now().Add(d))
	redisMock.FastForward(d)
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	entity, ok := testDB.Model(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	if err := testDB.Conn.Unscoped().Find(entitySlicePtr.Interface()).Error; err != nil {
		return err
	}

	count := entitySlicePtr.Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(t.replaceTokenPlaceholders(content.Content)), &criteria); err != nil {
		return err
	}

	entity, ok := testDB.Model(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	query := testDB.Conn.Unscoped()
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	result := query.Find(entitySlicePtr.Interface())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	count := entitySlicePtr.Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var objectMap map[string]any
	switch v := object.(type) {
	case map[string]any:
		objectMap = v
	default:
		objectJSON, _ := json.Marshal(object)
		if err := json.Unmarshal(objectJSON, &objectMap); err != nil {
			return nil
		}
	}

	fields := strings.Split(dotSeparatedField, ".")
	var field any = objectMap

	for _, currentField := range fields {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
