package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/password"
	"polygreen-backend/internal/features/auth/models"
	"polygreen-backend/internal/features/auth/repository"
	usermodels "polygreen-backend/internal/features/user/models"
	userrepo "polygreen-backend/internal/features/user/repository"
)

type fakeOTPRepo struct {
	otps map[string]*models.OTP
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: make(map[string]*models.OTP)}
}

func (r *fakeOTPRepo) Upsert(_ context.Context, otp *models.OTP) error {
	stored := *otp
	stored.Verified = false
	r.otps[otp.Mobile] = &stored
	return nil
}

func (r *fakeOTPRepo) Get(_ context.Context, mobile string) (*models.OTP, error) {
	otp, ok := r.otps[mobile]
	if !ok {
		return nil, repository.ErrOTPNotFound
	}
	return otp, nil
}

func (r *fakeOTPRepo) MarkVerified(_ context.Context, mobile string) error {
	otp, ok := r.otps[mobile]
	if !ok {
		return repository.ErrOTPNotFound
	}
	otp.Verified = true
	return nil
}

func (r *fakeOTPRepo) Delete(_ context.Context, mobile string) error {
	delete(r.otps, mobile)
	return nil
}

type fakeLimiter struct {
	allowed map[string]bool
}

func (l *fakeLimiter) Allow(_ context.Context, mobile string) (bool, error) {
	if l.allowed == nil {
		l.allowed = make(map[string]bool)
	}
	if l.allowed[mobile] {
		return false, nil
	}
	l.allowed[mobile] = true
	return true, nil
}

func (l *fakeLimiter) Window() time.Duration { return time.Minute }

type fakeUserRepo struct {
	users map[string]*usermodels.User
}

func newFakeUserRepo(users ...*usermodels.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*usermodels.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *usermodels.User) error {
	if _, ok := r.users[user.ID]; ok {
		return userrepo.ErrDuplicate
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByMobile(_ context.Context, mobile string) (*usermodels.User, error) {
	for _, u := range r.users {
		if u.Mobile == mobile {
			return u, nil
		}
	}
	return nil, userrepo.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	_, err := r.GetByMobile(ctx, mobile)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*usermodels.User, error) {
	out := make([]*usermodels.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) UpdatePasswordByID(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdatePasswordByMobile(ctx context.Context, mobile, hash string) error {
	u, err := r.GetByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

type recordingSender struct {
	sent    []string
	sendErr error
}

func (s *recordingSender) Send(_ context.Context, mobile, _ string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, mobile)
	return nil
}

const testMobile = "5551234567"

func setup(t *testing.T) (AuthService, *fakeOTPRepo, *fakeUserRepo, *recordingSender) {
	t.Helper()
	hash, err := password.Hash("original-pass")
	require.NoError(t, err)

	users := newFakeUserRepo(&usermodels.User{
		ID: "john_4567", Name: "John", Mobile: testMobile, PasswordHash: hash,
	})
	otps := newFakeOTPRepo()
	sender := &recordingSender{}
	svc := NewAuthService(otps, &fakeLimiter{}, users, sender, 5*time.Minute)
	return svc, otps, users, sender
}

func TestSendOTPStoresFourDigitCode(t *testing.T) {
	svc, otps, _, sender := setup(t)

	require.NoError(t, svc.SendOTP(context.Background(), testMobile))

	otp := otps.otps[testMobile]
	require.NotNil(t, otp)
	assert.Len(t, otp.Code, 4)
	assert.False(t, otp.Verified)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), otp.ExpiresAt, 2*time.Second)
	assert.Equal(t, []string{testMobile}, sender.sent)
}

func TestSendOTPSurvivesDeliveryFailure(t *testing.T) {
	svc, otps, _, sender := setup(t)
	sender.sendErr = fmt.Errorf("sms gateway unreachable")
	ctx := context.Background()

	// The code is stored before the send, so a gateway outage must not fail
	// the request.
	require.NoError(t, svc.SendOTP(ctx, testMobile))

	otp := otps.otps[testMobile]
	require.NotNil(t, otp)
	assert.Len(t, otp.Code, 4)

	// The stored code still verifies once the user receives it by other means.
	require.NoError(t, svc.VerifyOTP(ctx, testMobile, otp.Code))
}

func TestSendOTPUnknownUser(t *testing.T) {
	svc, _, _, _ := setup(t)

	err := svc.SendOTP(context.Background(), "9990000000")
	requireCode(t, err, errors.ErrCodeUserNotFound)
}

func TestSendOTPRateLimited(t *testing.T) {
	svc, _, _, sender := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.SendOTP(ctx, testMobile))
	err := svc.SendOTP(ctx, testMobile)
	requireCode(t, err, errors.ErrCodeRateLimit)
	assert.Len(t, sender.sent, 1)
}

func TestVerifyOTPLifecycle(t *testing.T) {
	svc, otps, _, _ := setup(t)
	ctx := context.Background()

	// Nothing requested yet.
	err := svc.VerifyOTP(ctx, testMobile, "1234")
	requireCode(t, err, errors.ErrCodeOTPNotFound)

	require.NoError(t, svc.SendOTP(ctx, testMobile))
	code := otps.otps[testMobile].Code

	// Wrong code.
	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	err = svc.VerifyOTP(ctx, testMobile, wrong)
	requireCode(t, err, errors.ErrCodeOTPMismatch)

	// Right code verifies once.
	require.NoError(t, svc.VerifyOTP(ctx, testMobile, code))
	assert.True(t, otps.otps[testMobile].Verified)

	// A second verification of the same code is refused.
	err = svc.VerifyOTP(ctx, testMobile, code)
	requireCode(t, err, errors.ErrCodeOTPAlreadyUsed)
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, otps, _, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.SendOTP(ctx, testMobile))
	otp := otps.otps[testMobile]
	otp.ExpiresAt = time.Now().Add(-time.Second)

	err := svc.VerifyOTP(ctx, testMobile, otp.Code)
	requireCode(t, err, errors.ErrCodeOTPExpired)
}

func TestSetNewPasswordRequiresVerifiedOTP(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	err := svc.SetNewPassword(ctx, testMobile, "brand-new-pass")
	requireCode(t, err, errors.ErrCodeOTPNotVerified)

	require.NoError(t, svc.SendOTP(ctx, testMobile))
	err = svc.SetNewPassword(ctx, testMobile, "brand-new-pass")
	requireCode(t, err, errors.ErrCodeOTPNotVerified)
}

func TestSetNewPasswordConsumesOTP(t *testing.T) {
	svc, otps, users, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.SendOTP(ctx, testMobile))
	code := otps.otps[testMobile].Code
	require.NoError(t, svc.VerifyOTP(ctx, testMobile, code))

	require.NoError(t, svc.SetNewPassword(ctx, testMobile, "brand-new-pass"))

	user, err := users.GetByMobile(ctx, testMobile)
	require.NoError(t, err)
	assert.True(t, password.Verify("brand-new-pass", user.PasswordHash))
	assert.False(t, password.Verify("original-pass", user.PasswordHash))

	// The verified OTP was single use.
	_, err = otps.Get(ctx, testMobile)
	assert.ErrorIs(t, err, repository.ErrOTPNotFound)

	err = svc.SetNewPassword(ctx, testMobile, "another-pass")
	requireCode(t, err, errors.ErrCodeOTPNotVerified)
}

func TestChangePasswordChecksOldOne(t *testing.T) {
	svc, _, users, _ := setup(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "john_4567", "wrong-pass", "new-pass-123")
	requireCode(t, err, errors.ErrCodeCredentialFailure)

	require.NoError(t, svc.ChangePassword(ctx, "john_4567", "original-pass", "new-pass-123"))

	user, err := users.GetByID(ctx, "john_4567")
	require.NoError(t, err)
	assert.True(t, password.Verify("new-pass-123", user.PasswordHash))
}

func TestCheckUser(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	exists, err := svc.CheckUser(ctx, testMobile)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckUser(ctx, "9990000000")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.CheckUser(ctx, "12ab34")
	requireCode(t, err, errors.ErrCodeInvalidMobile)
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, code, appErr.Code)
}
