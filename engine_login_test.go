package pulseauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/jwt"
)

func TestPasswordLoginMintsValidPair(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "correct-pw", true)
	ctx := context.Background()

	result, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "correct-pw")
	if err != nil {
		t.Fatalf("PasswordLogin failed: %v", err)
	}
	if result.Principal.SubjectID != "u-1" || result.Principal.Kind != KindEndUser {
		t.Fatalf("unexpected principal: %+v", result.Principal)
	}
	if result.Tokens.ExpiresIn != int64((30 * time.Minute).Seconds()) {
		t.Fatalf("ExpiresIn = %d", result.Tokens.ExpiresIn)
	}

	claims, err := env.engine.Validate(ctx, result.Tokens.AccessToken, jwt.KindAccess)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if claims.Subject != "u-1" || claims.SubjectKind != string(KindEndUser) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if env.endUsers.get("u-1").LastLoginAt.IsZero() {
		t.Fatal("last login not recorded")
	}
}

func TestPasswordLoginEnumerationSafe(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "correct-pw", true)
	ctx := context.Background()

	_, wrongPw := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "wrong-pw")
	_, noUser := env.engine.PasswordLogin(ctx, "nobody@example.com", contact.ChannelEmail, "whatever")

	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(noUser, ErrInvalidCredentials) {
		t.Fatalf("wrong password (%v) and unknown contact (%v) must return the same error", wrongPw, noUser)
	}
}

func TestPasswordLoginFailureBookkeeping(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "correct-pw", true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v", i+1, err)
		}
	}
	if got := env.endUsers.get("u-1").FailedLogins; got != 3 {
		t.Fatalf("failed logins = %d, want 3", got)
	}

	if _, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "correct-pw"); err != nil {
		t.Fatalf("login after failures: %v", err)
	}
	if got := env.endUsers.get("u-1").FailedLogins; got != 0 {
		t.Fatalf("failed logins after success = %d, want 0", got)
	}
}

func TestPasswordLoginRateCeiling(t *testing.T) {
	// A generous lock ceiling isolates the rate limiter's 5-per-window budget.
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Login.FailedAttemptCeiling = 100
	})
	env.seedEndUser(t, "u-1", "rate@example.com", "", "correct-pw", true)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.engine.PasswordLogin(ctx, "rate@example.com", contact.ChannelEmail, "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v, want invalid credentials", i+1, err)
		}
	}

	_, err := env.engine.PasswordLogin(ctx, "rate@example.com", contact.ChannelEmail, "correct-pw")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("sixth attempt err = %v, want rate limited", err)
	}
}

func TestPasswordLoginLockCeiling(t *testing.T) {
	// A generous rate budget isolates the account lock at 5 failures.
	env := newTestEnv(t, func(cfg *Config) {
		cfg.RateLimit.Policies[ActionLogin] = RatePolicy{MaxAttempts: 100, Window: 15 * time.Minute}
	})
	env.seedEndUser(t, "u-1", "lock@example.com", "", "correct-pw", true)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.engine.PasswordLogin(ctx, "lock@example.com", contact.ChannelEmail, "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v, want invalid credentials", i+1, err)
		}
	}

	// Counter is at the ceiling; even the correct password is refused.
	_, err := env.engine.PasswordLogin(ctx, "lock@example.com", contact.ChannelEmail, "correct-pw")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want account locked", err)
	}
}

func TestPasswordLoginInactiveAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "correct-pw", false)

	_, err := env.engine.PasswordLogin(context.Background(), "alice@example.com", contact.ChannelEmail, "correct-pw")
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("err = %v, want account inactive", err)
	}
}

func TestOperatorLoginCarriesOrgClaims(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedOperator(t, "m-1", "org-9", "ops@example.com", "op-pw", RoleManager, true)
	ctx := context.Background()

	result, err := env.engine.PasswordLogin(ctx, "ops@example.com", contact.ChannelEmail, "op-pw")
	if err != nil {
		t.Fatalf("PasswordLogin failed: %v", err)
	}
	if result.Principal.Kind != KindOperatorMember || result.Principal.OrgID != "org-9" || result.Principal.Role != RoleManager {
		t.Fatalf("unexpected principal: %+v", result.Principal)
	}

	claims, err := env.engine.Validate(ctx, result.Tokens.AccessToken, jwt.KindAccess)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.OrgID != "org-9" || claims.Role != string(RoleManager) {
		t.Fatalf("org claims missing: %+v", claims)
	}
}

func TestContactCollisionEndUserWins(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "shared@example.com", "", "user-pw", true)
	env.seedOperator(t, "m-1", "org-9", "shared@example.com", "user-pw", RoleAdmin, true)

	result, err := env.engine.PasswordLogin(context.Background(), "shared@example.com", contact.ChannelEmail, "user-pw")
	if err != nil {
		t.Fatalf("PasswordLogin failed: %v", err)
	}
	if result.Principal.Kind != KindEndUser || result.Principal.SubjectID != "u-1" {
		t.Fatalf("collision must resolve to the end user, got %+v", result.Principal)
	}
}

func TestOTPLoginMintsPairAndVerifiesChannel(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "", "+15551234567", "", true)
	ctx := context.Background()

	if err := env.engine.SendOTP(ctx, "+15551234567", contact.ChannelMessaging, PurposeLogin); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	code := env.messaging.lastCode(t)

	result, err := env.engine.OTPLogin(ctx, "+15551234567", contact.ChannelMessaging, code)
	if err != nil {
		t.Fatalf("OTPLogin failed: %v", err)
	}
	if result.Principal.SubjectID != "u-1" {
		t.Fatalf("unexpected principal: %+v", result.Principal)
	}
	if _, err := env.engine.Validate(ctx, result.Tokens.AccessToken, jwt.KindAccess); err != nil {
		t.Fatalf("minted token rejected: %v", err)
	}
	if !env.endUsers.get("u-1").PhoneVerified {
		t.Fatal("OTP login must mark the channel verified")
	}
}

func TestOTPLoginInactiveAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "", false)
	ctx := context.Background()

	if err := env.engine.SendOTP(ctx, "alice@example.com", contact.ChannelEmail, PurposeLogin); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	code := env.email.lastCode(t)

	_, err := env.engine.OTPLogin(ctx, "alice@example.com", contact.ChannelEmail, code)
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("err = %v, want account inactive", err)
	}
}

func TestUpdatePasswordWithOTP(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "old-pw", true)
	ctx := context.Background()

	if err := env.engine.SendOTP(ctx, "alice@example.com", contact.ChannelEmail, PurposePasswordUpdate); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	code := env.email.lastCode(t)

	if err := env.engine.UpdatePasswordWithOTP(ctx, "alice@example.com", contact.ChannelEmail, code, "new-pw"); err != nil {
		t.Fatalf("UpdatePasswordWithOTP failed: %v", err)
	}

	if _, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "old-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password err = %v, want invalid credentials", err)
	}
	if _, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "new-pw"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdatePasswordWithWrongCode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedEndUser(t, "u-1", "alice@example.com", "", "old-pw", true)
	ctx := context.Background()

	if err := env.engine.SendOTP(ctx, "alice@example.com", contact.ChannelEmail, PurposePasswordUpdate); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	code := env.email.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	if err := env.engine.UpdatePasswordWithOTP(ctx, "alice@example.com", contact.ChannelEmail, wrong, "new-pw"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("err = %v, want code mismatch", err)
	}
	if _, err := env.engine.PasswordLogin(ctx, "alice@example.com", contact.ChannelEmail, "old-pw"); err != nil {
		t.Fatalf("old password must still work: %v", err)
	}
}
