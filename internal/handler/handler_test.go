package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roja-08/Scout-Nallur/internal/admin"
	"github.com/Roja-08/Scout-Nallur/internal/auth"
	"github.com/Roja-08/Scout-Nallur/internal/duty"
	"github.com/Roja-08/Scout-Nallur/internal/notify"
	"github.com/Roja-08/Scout-Nallur/internal/scout"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "scout"
)

// ---------- in-memory stores ----------

type scoutStore struct {
	users map[string]*scout.User
	next  int
}

func newScoutStore() *scoutStore {
	return &scoutStore{users: map[string]*scout.User{}, next: 100}
}

func (f *scoutStore) NextID(_ context.Context, year int) (string, error) {
	f.next++
	return fmt.Sprintf("%d-%d", year, f.next), nil
}

func (f *scoutStore) Exists(_ context.Context, email, phone string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email || u.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *scoutStore) Create(_ context.Context, u *scout.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *scoutStore) Get(_ context.Context, id string) (*scout.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Attendance = append([]duty.Record(nil), u.Attendance...)
	return &cp, nil
}

func (f *scoutStore) GetByEmail(_ context.Context, email string) (*scout.User, error) {
	for id, u := range f.users {
		if u.Email == email {
			return f.Get(context.Background(), id)
		}
	}
	return nil, nil
}

func (f *scoutStore) List(_ context.Context) ([]scout.User, error) {
	var out []scout.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *scoutStore) UpdateProfile(_ context.Context, u *scout.User) error {
	stored := f.users[u.ID]
	att := stored.Attendance
	cp := *u
	cp.Attendance = att
	f.users[u.ID] = &cp
	return nil
}

func (f *scoutStore) SaveAttendance(_ context.Context, id string, records []duty.Record) error {
	f.users[id].Attendance = append([]duty.Record(nil), records...)
	return nil
}

func (f *scoutStore) SetQRCode(_ context.Context, id, code string) error {
	f.users[id].QRCode = code
	return nil
}

func (f *scoutStore) SetProfilePicURL(_ context.Context, id, url string) error {
	f.users[id].ProfilePicURL = url
	return nil
}

func (f *scoutStore) SetPasswordByEmail(_ context.Context, email, hash string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			u.PasswordHash = hash
			return true, nil
		}
	}
	return false, nil
}

func (f *scoutStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

type adminStore struct {
	admins map[string]*admin.Admin
}

func newAdminStore() *adminStore {
	return &adminStore{admins: map[string]*admin.Admin{}}
}

func (f *adminStore) Create(_ context.Context, a *admin.Admin) error {
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *adminStore) GetByEmailAndRole(_ context.Context, email, role string) (*admin.Admin, error) {
	for _, a := range f.admins {
		if a.Email == email && a.Role == role {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *adminStore) GetByEmail(_ context.Context, email string) (*admin.Admin, error) {
	for _, a := range f.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *adminStore) Get(_ context.Context, id string) (*admin.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *adminStore) ExistsEmail(_ context.Context, email string) (bool, error) {
	a, _ := f.GetByEmail(context.Background(), email)
	return a != nil, nil
}

func (f *adminStore) List(_ context.Context) ([]admin.Admin, error) {
	var out []admin.Admin
	for _, a := range f.admins {
		out = append(out, *a)
	}
	return out, nil
}

func (f *adminStore) UpdateEmail(_ context.Context, id, email string) (bool, error) {
	a, ok := f.admins[id]
	if !ok {
		return false, nil
	}
	a.Email = email
	return true, nil
}

func (f *adminStore) SetPasswordByEmail(_ context.Context, email, hash string) (bool, error) {
	for _, a := range f.admins {
		if a.Email == email {
			a.PasswordHash = hash
			return true, nil
		}
	}
	return false, nil
}

func (f *adminStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.admins[id]; !ok {
		return false, nil
	}
	delete(f.admins, id)
	return true, nil
}

type nopNotifier struct{}

func (nopNotifier) Dispatch(context.Context, notify.Job)      {}
func (nopNotifier) Publish(context.Context, notify.Job) error { return nil }

// ---------- setup ----------

func setupRouter(t *testing.T) (*gin.Engine, *scoutStore, *adminStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ss := newScoutStore()
	as := newAdminStore()
	clock := func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }

	scouts := scout.NewService(ss, nopNotifier{}, "http://localhost:3000", bcrypt.MinCost, clock)
	admins := admin.NewService(as, nopNotifier{}, bcrypt.MinCost, clock)

	h := New(scouts, admins, nil, testKey, testIssuer, time.Hour)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, ss, as
}

func seedAdmin(t *testing.T, as *adminStore, email, password, role string) *admin.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	a := &admin.Admin{ID: "admin-" + role + "-" + email, Email: email, PasswordHash: string(hash), Role: role, CreatedAt: time.Now()}
	as.admins[a.ID] = a
	return a
}

func token(t *testing.T, a *admin.Admin) string {
	t.Helper()
	tok, _, err := auth.Issue(a.ID, a.Role, a.Email, testIssuer, testKey, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerScout(t *testing.T, r *gin.Engine, super string, email, phone string) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/users", super, gin.H{
		"name": "Keerthi", "email": email, "phoneNumber": phone,
		"password": "secret123", "nic": "200012345678",
		"dateOfBirth": "2008-03-20", "school": "Nallur College",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register scout: %d %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

// ---------- tests ----------

func TestAdminLogin(t *testing.T) {
	r, _, as := setupRouter(t)
	a := seedAdmin(t, as, "super@gmail.com", "superadmin123", admin.RoleSuper)

	w := doJSON(t, r, http.MethodPost, "/api/auth/admin/login", "", gin.H{
		"email": "super@gmail.com", "password": "superadmin123", "role": "super",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["token"] == "" || out["adminType"] != "super" || out["adminId"] != a.ID || out["adminEmail"] != a.Email {
		t.Fatalf("unexpected login payload: %v", out)
	}

	// legacy clients send adminType instead of role
	w = doJSON(t, r, http.MethodPost, "/api/auth/admin/login", "", gin.H{
		"email": "super@gmail.com", "password": "superadmin123", "adminType": "super",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("legacy login: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/admin/login", "", gin.H{
		"email": "super@gmail.com", "password": "wrong", "role": "super",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/admin/login", "", gin.H{
		"email": "super@gmail.com", "password": "superadmin123", "role": "secondary",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("role mismatch: %d", w.Code)
	}
}

func TestRoleGates(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))
	secondary := token(t, seedAdmin(t, as, "sec@gmail.com", "pw", admin.RoleSecondary))

	created := registerScout(t, r, super, "a@example.com", "0770000001")
	id := created["id"].(string)

	// secondary may read and edit but not create or delete
	if w := doJSON(t, r, http.MethodGet, "/api/users", secondary, nil); w.Code != http.StatusOK {
		t.Errorf("secondary list: %d", w.Code)
	}
	w := doJSON(t, r, http.MethodPost, "/api/users", secondary, gin.H{
		"name": "X", "email": "x@example.com", "phoneNumber": "0770000009",
		"password": "pw", "nic": "n", "dateOfBirth": "2008-01-01", "school": "s",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("secondary create: %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/users/"+id, secondary, nil); w.Code != http.StatusForbidden {
		t.Errorf("secondary delete: %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/users/"+id, super, nil); w.Code != http.StatusOK {
		t.Errorf("super delete: %d", w.Code)
	}

	// admin management is super-only
	if w := doJSON(t, r, http.MethodGet, "/api/auth/admin", secondary, nil); w.Code != http.StatusForbidden {
		t.Errorf("secondary admin list: %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/auth/admin", super, nil); w.Code != http.StatusOK {
		t.Errorf("super admin list: %d", w.Code)
	}

	// and no token at all is rejected outright
	if w := doJSON(t, r, http.MethodGet, "/api/users", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list: %d, want 401", w.Code)
	}
}

func TestRegisterAssignsIDAndQR(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))

	created := registerScout(t, r, super, "a@example.com", "0770000001")
	id := created["id"].(string)
	if !strings.HasPrefix(id, "2025-") {
		t.Errorf("id = %s", id)
	}
	if qr, _ := created["qrCode"].(string); !strings.HasPrefix(qr, "data:image/png;base64,") {
		t.Errorf("qrCode missing: %.30v", created["qrCode"])
	}
	if created["workingStatus"] != duty.StatusNotToday {
		t.Errorf("workingStatus = %v", created["workingStatus"])
	}

	// duplicate email is a 400, not a 500
	w := doJSON(t, r, http.MethodPost, "/api/users", super, gin.H{
		"name": "Dup", "email": "a@example.com", "phoneNumber": "0770000002",
		"password": "pw", "nic": "n", "dateOfBirth": "2008-01-01", "school": "s",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate: %d", w.Code)
	}
}

func TestDutyUpsertEndpoint(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))
	id := registerScout(t, r, super, "a@example.com", "0770000001")["id"].(string)

	w := doJSON(t, r, http.MethodPut, "/api/users/"+id+"/duty", super, gin.H{
		"date": "2025-06-01", "comingTime": "08:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("check-in: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/users/"+id+"/duty", super, gin.H{
		"date": "2025-06-01", "finishingTime": "16:30",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("check-out: %d %s", w.Code, w.Body.String())
	}
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["totalDutyTime"] != float64(510) {
		t.Errorf("totalDutyTime = %v, want 510", out["totalDutyTime"])
	}
	if out["workingStatus"] != duty.StatusCompleted {
		t.Errorf("workingStatus = %v", out["workingStatus"])
	}

	w = doJSON(t, r, http.MethodPut, "/api/users/"+id+"/duty", super, gin.H{
		"date": "2025-06-01", "comingTime": "17:00", "finishingTime": "08:00",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted interval: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/users/"+id+"/duty", super, gin.H{"comingTime": "08:00"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing date: %d", w.Code)
	}
}

func TestPublicEndpointsRedact(t *testing.T) {
	r, ss, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))
	id := registerScout(t, r, super, "a@example.com", "0770000001")["id"].(string)
	ss.users[id].Attendance = []duty.Record{{Date: "2025-05-30", ComingTime: "08:00", FinishingTime: "10:00"}}

	w := doJSON(t, r, http.MethodGet, "/api/users/public/"+id, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public get: %d %s", w.Code, w.Body.String())
	}
	body := strings.ToLower(w.Body.String())
	if strings.Contains(body, "password") {
		t.Fatalf("public payload leaks credentials: %s", w.Body.String())
	}
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["totalDutyTime"] != float64(120) {
		t.Errorf("totalDutyTime = %v", out["totalDutyTime"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/public/leaderboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: %d", w.Code)
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Fatal("leaderboard leaks credentials")
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/public/2099-999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown public id: %d", w.Code)
	}
}

func TestUserLogin(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))
	id := registerScout(t, r, super, "a@example.com", "0770000001")["id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/auth/user-login", "", gin.H{
		"userId": id, "password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("user login: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.User.ID != id || out.User.Email != "a@example.com" {
		t.Errorf("unexpected payload: %+v", out)
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "token") {
		t.Error("user login must not issue a token")
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/user-login", "", gin.H{
		"userId": id, "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/user-login", "", gin.H{
		"userId": "2099-999", "password": "x",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: %d", w.Code)
	}
}

func TestResetPasswordFallsBackToAdmins(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "superpw", admin.RoleSuper))
	registerScout(t, r, super, "scout@example.com", "0770000001")

	// scout email hits the user path
	w := doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"email": "scout@example.com", "newPassword": "fresh",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("scout reset: %d %s", w.Code, w.Body.String())
	}

	// admin email falls through to the admin path
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"email": "super@gmail.com", "newPassword": "fresh",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin reset: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/admin/login", "", gin.H{
		"email": "super@gmail.com", "password": "fresh", "role": "super",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login with reset password: %d", w.Code)
	}

	// unknown everywhere
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"email": "nobody@example.com", "newPassword": "x",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown email: %d", w.Code)
	}
}

func TestAdminCRUD(t *testing.T) {
	r, _, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))

	w := doJSON(t, r, http.MethodPost, "/api/auth/admin/register", super, gin.H{
		"email": "sec@example.com", "password": "pw123", "role": "secondary",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin register: %d %s", w.Code, w.Body.String())
	}
	var created admin.Admin
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Role != admin.RoleSecondary {
		t.Errorf("role = %s", created.Role)
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Error("admin payload leaks password hash")
	}

	w = doJSON(t, r, http.MethodPut, "/api/auth/admin/"+created.ID, super, gin.H{
		"email": "renamed@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin update: %d %s", w.Code, w.Body.String())
	}
	var updated admin.Admin
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Email != "renamed@example.com" || updated.Role != admin.RoleSecondary {
		t.Errorf("unexpected update: %+v", updated)
	}

	if w := doJSON(t, r, http.MethodDelete, "/api/auth/admin/"+created.ID, super, nil); w.Code != http.StatusOK {
		t.Errorf("admin delete: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/auth/admin/"+created.ID, super, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted admin still readable: %d", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	r, ss, as := setupRouter(t)
	super := token(t, seedAdmin(t, as, "super@gmail.com", "pw", admin.RoleSuper))
	id := registerScout(t, r, super, "a@example.com", "0770000001")["id"].(string)
	ss.users[id].Attendance = []duty.Record{{Date: "2025-05-30", ComingTime: "08:00", FinishingTime: "10:00"}}

	w := doJSON(t, r, http.MethodGet, "/api/users/export", super, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), id) || !strings.Contains(w.Body.String(), "2 hours") {
		t.Errorf("csv body:\n%s", w.Body.String())
	}
}
