package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	chatRepo "nafany/database/repository/chat"
	feedbackRepo "nafany/database/repository/feedback"
	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/handlers"
	"nafany/models"
	"nafany/services/admin"
	"nafany/services/booking"
	"nafany/services/chat"
	"nafany/services/feedback"
	"nafany/services/notification"
	"nafany/services/provider"
	"nafany/services/user"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := userRepo.NewMemoryUserRepo()
	providers := providerRepo.NewMemoryProviderRepo()
	fb := feedbackRepo.NewMemoryFeedbackRepo()
	tokens := utils.NewTokenManager("routes-test", time.Hour)
	revoked := utils.NewMemoryCache()
	validator := utils.NewValidator()

	userService := &user.DefaultUserService{Repo: users, Tokens: tokens, Validator: validator}
	providerService := &provider.DefaultProviderService{
		Repo:      providers,
		Tokens:    tokens,
		Validator: validator,
		Cache:     utils.NewMemoryCache(),
		PageSize:  10,
	}
	bookingService := &booking.DefaultBookingService{
		Providers: providers,
		Users:     users,
		Notifier:  notification.NoopNotifier{},
		Validator: validator,
	}
	feedbackService := &feedback.DefaultFeedbackService{Repo: fb, Validator: validator}
	chatService := &chat.DefaultChatService{
		Repo:      chatRepo.NewMemoryChatRepo(),
		Users:     users,
		Providers: providers,
		Broker:    chat.NewLocalBroker(),
		Notifier:  notification.NoopNotifier{},
		Validator: validator,
	}
	adminService := &admin.DefaultAdminService{
		Username:        "root",
		Password:        "s3cret",
		Tokens:          tokens,
		Users:           users,
		Providers:       providers,
		Feedback:        fb,
		ProviderService: providerService,
	}

	hb := &handlers.HandlerBundle{
		Tokens:            tokens,
		Revoked:           revoked,
		MaxRequestsPerMin: 1000,
		Session:           handlers.NewSessionHandler(tokens, revoked),
		Settings:          handlers.NewSettingsHandler(userService, providerService),
		User:              handlers.NewUserHandler(userService),
		Provider:          handlers.NewProviderHandler(providerService),
		Booking:           handlers.NewBookingHandler(bookingService),
		Feedback:          handlers.NewFeedbackHandler(feedbackService),
		Chat:              handlers.NewChatHandler(chatService),
		Admin:             handlers.NewAdminHandler(adminService, userService, providerService),
	}
	r := gin.New()
	r.Use(utils.ErrorHandler())
	RegisterRoutes(r, hb)
	return r
}

func do(t *testing.T, r http.Handler, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func login(t *testing.T, r http.Handler, url string, body interface{}) string {
	t.Helper()
	w := do(t, r, http.MethodPost, url, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.AuthResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func signUp(t *testing.T, r http.Handler) (userToken, providerToken string) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/users/register", "", models.UserRegistration{
		Name: "Ali", Email: "ali@example.com", Password: "secret1", Phone: "01001234567", Governorate: "القاهرة",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret1")

	w = do(t, r, http.MethodPost, "/api/providers/register", "", models.ProviderRegistration{
		Name: "Mona", Email: "mona@example.com", Password: "secret2", NationalID: "29801011234567",
		Phone: "01101234567", Address: "شارع التحرير", Category: "صيانة", Profession: "سباك", Governorate: "القاهرة",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	userToken = login(t, r, "/api/users/login", models.LoginInput{Email: "ali@example.com", Password: "secret1"})
	providerToken = login(t, r, "/api/providers/login", models.LoginInput{Email: "mona@example.com", Password: "secret2"})
	return userToken, providerToken
}

func TestStreamsEndWhenServerContextIsCancelled(t *testing.T) {
	r := newRouter(t)
	userToken, _ := signUp(t, r)
	w := do(t, r, http.MethodPost, "/api/chats/messages", userToken,
		models.MessageInput{ReceiverID: "mona@example.com", Text: "مرحبا"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := NewServer(ctx, "", r)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)

	chatID := models.ChatID("ali@example.com", "mona@example.com")
	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/chats/"+url.PathEscape(chatID)+"/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	cancel()
	done := make(chan struct{})
	go func() {
		io.Copy(io.Discard, resp.Body)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("stream still open after the server context was cancelled")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
	defer stop()
	assert.NoError(t, srv.Shutdown(shutdownCtx))
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nafany")
}

func TestBookingFlow(t *testing.T) {
	r := newRouter(t)
	userToken, providerToken := signUp(t, r)

	date := time.Now().AddDate(0, 0, 7).Format(utils.ISODateLayout)
	slot := models.BookingTimeLabels[0]
	req := models.BookingRequest{ProviderEmail: "mona@example.com", BookingDate: date, BookingTime: slot}
	availability := "/api/booking/availability?" + url.Values{
		"provider": {"mona@example.com"},
		"date":     {date},
		"time":     {slot},
	}.Encode()

	w := do(t, r, http.MethodGet, "/api/booking/times", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), slot)

	// only users book.
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodPost, "/api/booking", providerToken, req).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/booking", "", req).Code)

	w = do(t, r, http.MethodPost, "/api/booking", userToken, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b models.Booking
	decode(t, w, &b)
	assert.Equal(t, models.BookingPending, b.Status)

	w = do(t, r, http.MethodPost, "/api/booking", userToken, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"available":false`)

	w = do(t, r, http.MethodGet, availability, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/me/bookings/"+b.ID+"/status", providerToken, models.BookingStatusRequest{Status: models.BookingApproved})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/booking/mona@example.com/"+b.ID+"/cancel", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, availability, "", nil)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/booking/mine", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Booking
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, models.BookingCancelled, mine[0].Status)
}

func TestReviewsAndValidation(t *testing.T) {
	r := newRouter(t)
	userToken, providerToken := signUp(t, r)

	w := do(t, r, http.MethodPost, "/api/providers/mona@example.com/reviews", userToken, models.ReviewInput{Rating: 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp utils.ErrorResponse
	decode(t, w, &errResp)
	assert.Contains(t, errResp.Fields, "rating")

	// providers do not review.
	w = do(t, r, http.MethodPost, "/api/providers/mona@example.com/reviews", providerToken, models.ReviewInput{Rating: 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/providers/mona@example.com/reviews", userToken, models.ReviewInput{Rating: 4, Review: "ممتاز"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/providers/mona@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Provider
	decode(t, w, &p)
	assert.Equal(t, 1, p.RatingsCount)
	assert.Equal(t, 4.0, p.AverageRating)
	assert.Empty(t, p.NationalID)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/providers/ghost@example.com", "", nil).Code)

	w = do(t, r, http.MethodPost, "/api/users/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/users/login", "", models.LoginInput{Email: "ali@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newRouter(t)
	userToken, _ := signUp(t, r)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/session/me", userToken, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/session/logout", userToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/session/me", userToken, nil).Code)
}

func TestAdminFeedbackFlow(t *testing.T) {
	r := newRouter(t)
	userToken, _ := signUp(t, r)

	w := do(t, r, http.MethodPost, "/api/feedback", userToken, models.FeedbackInput{
		Type: models.FeedbackComplaint, Title: "تأخير", Description: "تأخر مقدم الخدمة عن الموعد",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var fb models.Feedback
	decode(t, w, &fb)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/api/admin/feedback", userToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/admin/login", "", gin.H{"username": "root", "password": "nope"}).Code)

	adminToken := login(t, r, "/api/admin/login", gin.H{"username": "root", "password": "s3cret"})

	w = do(t, r, http.MethodPut, "/api/admin/feedback/"+fb.ID+"/response", adminToken, models.FeedbackResponseInput{Response: "تم التواصل"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &fb)
	assert.Equal(t, models.FeedbackResolved, fb.Status)

	w = do(t, r, http.MethodPut, "/api/admin/feedback/"+fb.ID+"/status", adminToken, models.FeedbackStatusInput{Status: "closed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodPut, "/api/admin/feedback/"+fb.ID+"/status", adminToken, models.FeedbackStatusInput{Status: "in_progress"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d admin.Dashboard
	decode(t, w, &d)
	assert.Equal(t, int64(1), d.Users)
	assert.Equal(t, int64(1), d.Providers)
}
