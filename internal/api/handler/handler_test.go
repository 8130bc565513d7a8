package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/api/middleware"
	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/jwt"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutClaims  *jwt.Claims
	meResult      *dto.UserDetailResponse
	meErr         error
	changePassErr error
	memberCPF     string
	memberResult  *dto.MemberTokenResponse
	memberErr     error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) MemberLogin(_ context.Context, req *dto.MemberLoginRequest) (*dto.MemberTokenResponse, error) {
	m.memberCPF = req.CPF
	return m.memberResult, m.memberErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutClaims = claims
	return nil
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) EnsureBootstrapAdmin(_ context.Context) error { return nil }

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	checkInResult *dto.CheckInResponse
	checkInErr    error
	checkInNow    time.Time
	dailyResult   *dto.DailyAttendanceResponse
	dailyErr      error
	removeErr     error
	removed       [2]string
}

func (m *mockAttendanceService) CheckIn(_ context.Context, _ *dto.CheckInRequest, now time.Time, _ string) (*dto.CheckInResponse, error) {
	m.checkInNow = now
	return m.checkInResult, m.checkInErr
}
func (m *mockAttendanceService) Remove(_ context.Context, memberID, date, _ string) error {
	m.removed = [2]string{memberID, date}
	return m.removeErr
}
func (m *mockAttendanceService) ListByDate(_ context.Context, _ string, _ time.Time) (*dto.DailyAttendanceResponse, error) {
	return m.dailyResult, m.dailyErr
}
func (m *mockAttendanceService) MemberHistory(_ context.Context, _ string) ([]dto.AttendanceResponse, error) {
	return nil, nil
}

// ── Mock ReportService ──

type mockReportService struct {
	buf      *bytes.Buffer
	filename string
	html     string
	err      error
	kind     string
}

func (m *mockReportService) AttendanceReport(_ context.Context, req *dto.AttendanceReportRequest, _ time.Time) (*dto.AttendanceReportResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.AttendanceReportResponse{Period: req.Period}, nil
}
func (m *mockReportService) JustificationReport(_ context.Context, req *dto.AttendanceReportRequest, _ time.Time) (*dto.JustificationReportResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.JustificationReportResponse{Period: req.Period}, nil
}
func (m *mockReportService) CertificateReport(_ context.Context, req *dto.AttendanceReportRequest, _ time.Time) (*dto.CertificateReportResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CertificateReportResponse{Date: req.Date}, nil
}
func (m *mockReportService) TimeSlotReport(_ context.Context, req *dto.AttendanceReportRequest, _ time.Time) (*dto.TimeSlotReportResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.TimeSlotReportResponse{Period: req.Period}, nil
}
func (m *mockReportService) Report(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (interface{}, error) {
	m.kind = kind
	switch kind {
	case service.ReportAttendance:
		return m.AttendanceReport(ctx, req, today)
	case service.ReportJustifications:
		return m.JustificationReport(ctx, req, today)
	case service.ReportCertificates:
		return m.CertificateReport(ctx, req, today)
	case service.ReportTimeSlots:
		return m.TimeSlotReport(ctx, req, today)
	}
	return nil, service.ErrInvalidReportKind
}
func (m *mockReportService) ExportExcel(_ context.Context, kind string, _ *dto.AttendanceReportRequest, _ time.Time) (*bytes.Buffer, string, error) {
	m.kind = kind
	return m.buf, m.filename, m.err
}
func (m *mockReportService) PrintHTML(_ context.Context, kind string, _ *dto.AttendanceReportRequest, _ time.Time) (string, error) {
	m.kind = kind
	return m.html, m.err
}

// ── Mock DashboardService ──

type mockDashboardService struct {
	memberID string
	today    time.Time
	err      error
}

func (m *mockDashboardService) MemberDashboard(_ context.Context, memberID string, today time.Time) (*dto.MemberDashboardResponse, error) {
	m.memberID = memberID
	m.today = today
	if m.err != nil {
		return nil, m.err
	}
	return &dto.MemberDashboardResponse{
		MemberID: memberID,
		Name:     "Ana Souza",
		Status:   "active",
		Absences: dto.AbsenceReportResponse{MemberID: memberID, ConsecutiveAbsences: 2, UnjustifiedDates: []string{"2026-10-16", "2026-10-15"}},
		Certificate: dto.CertificateStatusResponse{
			Status: "valid", DaysRemaining: 317, ExpiryDate: "2027-09-01",
		},
	}, nil
}

// ── Mock MaintenanceService ──

type mockMaintenanceService struct {
	sweepErr error
}

func (m *mockMaintenanceService) RunInactivitySweep(_ context.Context, _ time.Time) (*dto.SweepResponse, error) {
	if m.sweepErr != nil {
		return nil, m.sweepErr
	}
	return &dto.SweepResponse{FlippedToInactive: 2, FlippedToActive: 1}, nil
}
func (m *mockMaintenanceService) DeduplicateAttendance(_ context.Context) (*dto.DedupResponse, error) {
	return &dto.DedupResponse{RemovedCount: 3}, nil
}
func (m *mockMaintenanceService) RunAll(_ context.Context, _ time.Time) error { return nil }

// ── Mock ClosureDayService ──

type mockClosureDayService struct {
	icsBody string
	url     string
}

func (m *mockClosureDayService) List(_ context.Context, _ *dto.ClosureDayListRequest) ([]dto.ClosureDayResponse, error) {
	return nil, nil
}
func (m *mockClosureDayService) Create(_ context.Context, req *dto.CreateClosureDayRequest, _ string) (*dto.ClosureDayResponse, error) {
	return &dto.ClosureDayResponse{Date: req.Date, Name: req.Name}, nil
}
func (m *mockClosureDayService) Delete(_ context.Context, _ string, _ string) error { return nil }
func (m *mockClosureDayService) ImportICS(_ context.Context, reader io.Reader, _ string) (*dto.ImportClosureDaysResponse, error) {
	b, _ := io.ReadAll(reader)
	m.icsBody = string(b)
	return &dto.ImportClosureDaysResponse{Imported: 1}, nil
}
func (m *mockClosureDayService) ImportURL(_ context.Context, url string, _ string) (*dto.ImportClosureDaysResponse, error) {
	if url == "" {
		return nil, service.ErrICSSourceMissing
	}
	m.url = url
	return &dto.ImportClosureDaysResponse{Imported: 2}, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

var fixedNow = time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)

func testJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func fixedClock() time.Time { return fixedNow }

func setAuth(c *gin.Context) {
	c.Set(CtxUserID, "test-user-id")
	c.Set(CtxRole, "admin")
	c.Set(CtxClaims, &jwt.Claims{UserID: "test-user-id", Role: "admin", TokenType: jwt.TokenTypeAccess})
}

// withAuth 模拟 JWTAuth 已注入用户信息
func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// Error Mapping
// ═══════════════════════════════════════════════════════════

func TestRespondError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"校验错误", service.ErrInvalidDate, http.StatusBadRequest, codeValidation},
		{"学员不存在", service.ErrMemberNotFound, http.StatusNotFound, codeNotFound},
		{"CPF 重复", service.ErrCPFExists, http.StatusConflict, codeDuplicate},
		{"乐观锁冲突", pkgerrors.ErrOptimisticLock, http.StatusConflict, codeOptimisticLock},
		{"包装的乐观锁冲突", fmt.Errorf("更新失败: %w", pkgerrors.ErrOptimisticLock), http.StatusConflict, codeOptimisticLock},
		{"登录失败", service.ErrInvalidCredentials, http.StatusUnauthorized, codeInvalidCredentials},
		{"账号停用", service.ErrUserDisabled, http.StatusForbidden, codeUserDisabled},
		{"维护任务占用", service.ErrMaintenanceBusy, http.StatusConflict, codeMaintenanceBusy},
		{"恢复被缺勤阻止", service.ErrMemberHasAbsences, http.StatusUnprocessableEntity, codeReactivationBlocked},
		{"恢复被多个条件阻止", errors.Join(service.ErrMemberHasAbsences, service.ErrCertificateExpired), http.StatusUnprocessableEntity, codeReactivationBlocked},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err) })
			w := serve(r, httptest.NewRequest("GET", "/", nil))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestBindFailed_BodyTooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 8)
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
		}
	})
	w := serve(r, httptest.NewRequest("POST", "/", jsonBody(dto.LoginRequest{Username: "admin", Password: "password123"})))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "password123"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "wrong"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeInvalidCredentials {
		t.Errorf("expected error code %d, got %d", codeInvalidCredentials, resp.Code)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", withAuth(h.Logout))
	w := serve(r, httptest.NewRequest("POST", "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutClaims == nil || mock.logoutClaims.UserID != "test-user-id" {
		t.Errorf("expected claims to be passed to service, got %+v", mock.logoutClaims)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := serve(r, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_MemberLogin_Success(t *testing.T) {
	mock := &mockAuthService{
		memberResult: &dto.MemberTokenResponse{AccessToken: "member-access", ExpiresIn: 900, MemberID: "m-1", Name: "Ana Souza"},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/member-login", h.MemberLogin)
	req := httptest.NewRequest("POST", "/auth/member-login", jsonBody(dto.MemberLoginRequest{CPF: "123.456.789-00"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.memberCPF != "123.456.789-00" {
		t.Errorf("期望 CPF 透传给 service，实际 %q", mock.memberCPF)
	}
}

func TestAuthHandler_MemberLogin_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		err      error
		wantHTTP int
		wantCode int
	}{
		{"缺少 CPF", map[string]string{}, nil, http.StatusBadRequest, codeValidation},
		{"CPF 未登记", dto.MemberLoginRequest{CPF: "000.000.000-00"}, service.ErrUnknownCPF, http.StatusUnauthorized, codeUnknownCPF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{memberErr: tt.err})
			r := gin.New()
			r.POST("/auth/member-login", h.MemberLogin)
			req := httptest.NewRequest("POST", "/auth/member-login", jsonBody(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(r, req)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

// dashboardRouter 与生产路由相同的鉴权链：JWTAuth + 学员角色
func dashboardRouter(mgr *jwt.Manager, h *DashboardHandler) *gin.Engine {
	r := gin.New()
	me := r.Group("/me", middleware.JWTAuth(mgr, nil), middleware.RoleAuth(model.RoleMember))
	me.GET("/dashboard", h.Dashboard)
	return r
}

func dashboardRequest(token string) *http.Request {
	req := httptest.NewRequest("GET", "/me/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestDashboardHandler_MemberToken(t *testing.T) {
	mgr := testJWTManager()
	mock := &mockDashboardService{}
	r := dashboardRouter(mgr, NewDashboardHandler(mock, fixedClock))

	token, _ := mgr.GenerateAccessToken("m-1", "Ana Souza", model.RoleMember)
	w := serve(r, dashboardRequest(token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.memberID != "m-1" {
		t.Errorf("期望按 Token 中的学员 ID 查询，实际 %q", mock.memberID)
	}
	if !mock.today.Equal(fixedNow) {
		t.Errorf("期望使用业务时钟，实际 %v", mock.today)
	}

	var body struct {
		Data dto.MemberDashboardResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if body.Data.Absences.ConsecutiveAbsences != 2 || body.Data.Certificate.Status != "valid" {
		t.Errorf("面板内容不符: %+v", body.Data)
	}
}

func TestDashboardHandler_StaffTokenForbidden(t *testing.T) {
	mgr := testJWTManager()
	mock := &mockDashboardService{}
	r := dashboardRouter(mgr, NewDashboardHandler(mock, fixedClock))

	for _, role := range model.StaffRoles {
		token, _ := mgr.GenerateAccessToken("user-1", "staff", role)
		if w := serve(r, dashboardRequest(token)); w.Code != http.StatusForbidden {
			t.Errorf("角色 %s: 期望 403，实际 %d", role, w.Code)
		}
	}
	if mock.memberID != "" {
		t.Errorf("工作人员 Token 不应调用面板查询")
	}
}

func TestDashboardHandler_MemberDeleted(t *testing.T) {
	mgr := testJWTManager()
	r := dashboardRouter(mgr, NewDashboardHandler(&mockDashboardService{err: service.ErrMemberNotFound}, fixedClock))

	token, _ := mgr.GenerateAccessToken("m-gone", "Ex Aluno", model.RoleMember)
	if w := serve(r, dashboardRequest(token)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_CheckIn_Success(t *testing.T) {
	mock := &mockAttendanceService{
		checkInResult: &dto.CheckInResponse{
			Record:   dto.AttendanceResponse{MemberID: "m1", Date: "2026-10-19", CheckInTime: "07:30"},
			Decision: dto.CheckInDecisionResponse{MemberID: "m1", Allowed: true, Reasons: []string{}},
		},
	}
	h := NewAttendanceHandler(mock, fixedClock)

	r := gin.New()
	r.POST("/attendance/check-in", withAuth(h.CheckIn))
	req := httptest.NewRequest("POST", "/attendance/check-in", jsonBody(dto.CheckInRequest{CPF: "529.982.247-25"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if !mock.checkInNow.Equal(fixedNow) {
		t.Errorf("expected clock time to be passed, got %v", mock.checkInNow)
	}
}

func TestAttendanceHandler_CheckIn_Rejected(t *testing.T) {
	mock := &mockAttendanceService{
		checkInResult: &dto.CheckInResponse{
			Decision: dto.CheckInDecisionResponse{
				MemberID: "m1",
				Allowed:  false,
				Reasons:  []string{"too_many_absences", "certificate_expired"},
			},
		},
		checkInErr: service.ErrCheckInNotAllowed,
	}
	h := NewAttendanceHandler(mock, fixedClock)

	r := gin.New()
	r.POST("/attendance/check-in", withAuth(h.CheckIn))
	req := httptest.NewRequest("POST", "/attendance/check-in", jsonBody(dto.CheckInRequest{CPF: "52998224725"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var body struct {
		Code int                         `json:"code"`
		Data dto.CheckInDecisionResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Code != codeCheckInNotAllowed {
		t.Errorf("expected code %d, got %d", codeCheckInNotAllowed, body.Code)
	}
	if len(body.Data.Reasons) != 2 || body.Data.Reasons[0] != "too_many_absences" {
		t.Errorf("expected both reasons in response, got %v", body.Data.Reasons)
	}
}

func TestAttendanceHandler_CheckIn_AlreadyCheckedIn(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{checkInErr: service.ErrAlreadyCheckedIn}, fixedClock)

	r := gin.New()
	r.POST("/attendance/check-in", withAuth(h.CheckIn))
	req := httptest.NewRequest("POST", "/attendance/check-in", jsonBody(dto.CheckInRequest{CPF: "52998224725"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAttendanceHandler_Remove(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock, fixedClock)

	r := gin.New()
	r.DELETE("/attendance/:member_id/:date", withAuth(h.Remove))
	w := serve(r, httptest.NewRequest("DELETE", "/attendance/m1/2026-10-16", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.removed != [2]string{"m1", "2026-10-16"} {
		t.Errorf("unexpected path params: %v", mock.removed)
	}

	mock.removeErr = service.ErrAttendanceNotFound
	if w := serve(r, httptest.NewRequest("DELETE", "/attendance/m1/2026-10-15", nil)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_ExportExcel(t *testing.T) {
	mock := &mockReportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "frequencia_monthly_2026-10-01.xlsx"}
	h := NewReportHandler(mock, fixedClock)

	r := gin.New()
	r.GET("/reports/:kind/export", h.ExportExcel)
	w := serve(r, httptest.NewRequest("GET", "/reports/attendance/export?period=monthly", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "frequencia_monthly_2026-10-01.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
	if mock.kind != service.ReportAttendance {
		t.Errorf("期望报表类型 attendance，实际 %q", mock.kind)
	}
}

func TestReportHandler_InvalidPeriod(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, fixedClock)

	r := gin.New()
	r.GET("/reports/:kind", h.Report)
	w := serve(r, httptest.NewRequest("GET", "/reports/attendance?period=yearly", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_Report_Kinds(t *testing.T) {
	tests := []struct {
		path     string
		wantHTTP int
	}{
		{"/reports/attendance?period=weekly", http.StatusOK},
		{"/reports/justifications?period=monthly", http.StatusOK},
		{"/reports/certificates?date=2026-10-19", http.StatusOK},
		{"/reports/time-slots", http.StatusOK},
		{"/reports/payments", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := NewReportHandler(&mockReportService{}, fixedClock)
			r := gin.New()
			r.GET("/reports/:kind", h.Report)
			w := serve(r, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
		})
	}
}

func TestReportHandler_ExportExcel_Certificates(t *testing.T) {
	mock := &mockReportService{buf: bytes.NewBufferString("xlsx"), filename: "atestados_2026-10-19.xlsx"}
	h := NewReportHandler(mock, fixedClock)

	r := gin.New()
	r.GET("/reports/:kind/export", h.ExportExcel)
	w := serve(r, httptest.NewRequest("GET", "/reports/certificates/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.kind != service.ReportCertificates {
		t.Errorf("期望报表类型 certificates，实际 %q", mock.kind)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "atestados_2026-10-19.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}

func TestReportHandler_Print(t *testing.T) {
	h := NewReportHandler(&mockReportService{html: "<!DOCTYPE html><html></html>"}, fixedClock)

	r := gin.New()
	r.GET("/reports/:kind/print", h.Print)
	w := serve(r, httptest.NewRequest("GET", "/reports/time-slots/print", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
}

// ═══════════════════════════════════════════════════════════
// MaintenanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMaintenanceHandler_Sweep(t *testing.T) {
	h := NewMaintenanceHandler(&mockMaintenanceService{}, fixedClock)

	r := gin.New()
	r.POST("/maintenance/sweep", h.Sweep)
	w := serve(r, httptest.NewRequest("POST", "/maintenance/sweep", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMaintenanceHandler_Busy(t *testing.T) {
	h := NewMaintenanceHandler(&mockMaintenanceService{sweepErr: service.ErrMaintenanceBusy}, fixedClock)

	r := gin.New()
	r.POST("/maintenance/sweep", h.Sweep)
	w := serve(r, httptest.NewRequest("POST", "/maintenance/sweep", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ClosureDayHandler Tests
// ═══════════════════════════════════════════════════════════

func TestClosureDayHandler_Import_File(t *testing.T) {
	mock := &mockClosureDayService{}
	h := NewClosureDayHandler(mock)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "feriados.ics")
	part.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	mw.Close()

	r := gin.New()
	r.POST("/closure-days/import", withAuth(h.Import))
	req := httptest.NewRequest("POST", "/closure-days/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(mock.icsBody, "BEGIN:VCALENDAR") {
		t.Errorf("expected uploaded content to reach service, got %q", mock.icsBody)
	}
}

func TestClosureDayHandler_Import_URL(t *testing.T) {
	mock := &mockClosureDayService{}
	h := NewClosureDayHandler(mock)

	r := gin.New()
	r.POST("/closure-days/import", withAuth(h.Import))
	req := httptest.NewRequest("POST", "/closure-days/import", jsonBody(dto.ImportClosureDaysRequest{URL: "https://example.com/feriados.ics"}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.url != "https://example.com/feriados.ics" {
		t.Errorf("unexpected url %q", mock.url)
	}
}

func TestClosureDayHandler_Import_NoSource(t *testing.T) {
	h := NewClosureDayHandler(&mockClosureDayService{})

	r := gin.New()
	r.POST("/closure-days/import", withAuth(h.Import))
	req := httptest.NewRequest("POST", "/closure-days/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
