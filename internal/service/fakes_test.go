package service

import (
	"context"
	"sync"
	"time"

	"github.com/Payphone-Digital/authflow/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*model.User
	// updateErr fails every UpdatePassword call when set.
	updateErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint]*model.User{}}
}

func (f *fakeUsers) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) copyOf(u *model.User) *model.User {
	c := *u
	return &c
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return f.copyOf(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return f.copyOf(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string, excludeID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ExistsByCIN(_ context.Context, cin string, excludeID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.CIN != nil && *u.CIN == cin && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.add(user)
	return nil
}

func (f *fakeUsers) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "company":
			u.Company = v.(string)
		case "cin":
			if s, ok := v.(string); ok {
				u.CIN = &s
			} else {
				u.CIN = nil
			}
		}
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashed
	return nil
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id uint, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.EmailVerifiedAt != nil {
		return false, nil
	}
	u.EmailVerifiedAt = &at
	return true, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

type fakeRefreshTokens struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{rows: map[string]model.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(_ context.Context, t *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.TokenHash] = *t
	return nil
}

func (f *fakeRefreshTokens) Consume(_ context.Context, hash string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.rows, hash)
	return &row, nil
}

func (f *fakeRefreshTokens) DeleteByHash(_ context.Context, hash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[hash]; !ok {
		return 0, nil
	}
	delete(f.rows, hash)
	return 1, nil
}

func (f *fakeRefreshTokens) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for h, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for h, row := range f.rows {
		if row.Expired(now) {
			delete(f.rows, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeResets struct {
	mu    sync.Mutex
	rows  map[string]model.PasswordResetToken
	users *fakeUsers
}

func newFakeResets(users *fakeUsers) *fakeResets {
	return &fakeResets{rows: map[string]model.PasswordResetToken{}, users: users}
}

func (f *fakeResets) Upsert(_ context.Context, email, hashed string, createdAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[email] = model.PasswordResetToken{Email: email, Token: hashed, CreatedAt: createdAt}
	return nil
}

func (f *fakeResets) GetByEmail(_ context.Context, email string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeResets) ListCreatedAfter(_ context.Context, since time.Time) ([]model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PasswordResetToken
	for _, row := range f.rows {
		if row.CreatedAt.After(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeResets) Redeem(ctx context.Context, email, hashed string, userID uint, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[email]
	if !ok || row.Token != hashed {
		return false, nil
	}
	if err := f.users.UpdatePassword(ctx, userID, password); err != nil {
		return false, err
	}
	delete(f.rows, email)
	return true, nil
}

func (f *fakeResets) DeleteCreatedBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for email, row := range f.rows {
		if !row.CreatedAt.After(before) {
			delete(f.rows, email)
			n++
		}
	}
	return n, nil
}

type sentMail struct {
	template string
	to       string
	data     map[string]any
}

type fakeNotifier struct {
	mu      sync.Mutex
	mails   []sentMail
	events  []string
	mailErr error
}

func (f *fakeNotifier) SendMail(_ context.Context, template, to string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mailErr != nil {
		return f.mailErr
	}
	f.mails = append(f.mails, sentMail{template: template, to: to, data: data})
	return nil
}

func (f *fakeNotifier) PublishEvent(_ context.Context, name string, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, name)
}

func (f *fakeNotifier) lastURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.mails) == 0 {
		return ""
	}
	u, _ := f.mails[len(f.mails)-1].data["URL"].(string)
	return u
}

func mustHash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}
