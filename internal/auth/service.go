package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/repository"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// nilの場合は記録をスキップする。
type MetricsRecorder interface {
	RecordLogin(provider string, success bool)
	RecordRegistration(success bool)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge   int           // セッション有効期間（秒）
	ExchangeTimeout time.Duration // OAuthプロバイダーとのラウンドトリップの上限
}

// Service は認証に関するビジネスロジックを提供する。
// ローカル認証、OAuth連携（find-or-create）、セッションの発行・解決・破棄を担う。
type Service struct {
	providers   map[model.Provider]OAuthProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
// providersは閉じた対応表であり、実行時の追加登録は行わない。
func NewService(
	providers map[model.Provider]OAuthProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	if config.ExchangeTimeout <= 0 {
		config.ExchangeTimeout = 10 * time.Second
	}
	return &Service{
		providers:   providers,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// IsAdmitted はゲートの判定関数。解決済みのユーザーが匿名でない場合にtrueを返す。
func IsAdmitted(user *model.User) bool {
	return user != nil
}

// LoginURL は指定プロバイダーのOAuth認可URLを生成する。
func (s *Service) LoginURL(provider model.Provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("unsupported oauth provider: %s", provider)
	}
	return p.LoginURL(state), nil
}

// Register は新規ローカルユーザーを登録し、セッションを発行する。
// パスワードはbcryptでハッシュ化して保存する。
// ユーザー名の一意性はストアの条件付きINSERTで強制され、
// 既に使用されている場合はmodel.ErrDuplicateUsernameを返しユーザーは作成されない。
func (s *Service) Register(ctx context.Context, username, password string) (*model.Session, error) {
	if username == "" || password == "" {
		s.recordRegistration(false)
		return nil, fmt.Errorf("username and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.recordRegistration(false)
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateLocal(ctx, user); err != nil {
		s.recordRegistration(false)
		if errors.Is(err, model.ErrDuplicateUsername) {
			slog.Info("registration rejected: duplicate username",
				slog.String("username", username),
			)
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("provider", string(model.ProviderLocal)),
	)

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.recordRegistration(false)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordRegistration(true)
	return session, nil
}

// Login はローカル認証情報を検証し、成功した場合にセッションを発行する。
// 必ず保存済みハッシュとの再計算・照合を行い、リクエストのフィールドを
// そのまま信頼することはない。
// 未知のユーザー名とパスワード不一致は外部から区別できないよう、
// どちらもmodel.ErrBadCredentialを返す。理由はサーバーログにのみ残す。
func (s *Service) Login(ctx context.Context, username, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.recordLogin(model.ProviderLocal, false)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.HasLocalCredential() {
		s.recordLogin(model.ProviderLocal, false)
		slog.Info("login rejected: unknown username",
			slog.String("username", username),
		)
		return nil, model.ErrBadCredential
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.recordLogin(model.ProviderLocal, false)
		slog.Info("login rejected: password mismatch",
			slog.String("user_id", user.ID),
		)
		return nil, model.ErrBadCredential
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.recordLogin(model.ProviderLocal, false)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", string(model.ProviderLocal)),
	)

	s.recordLogin(model.ProviderLocal, true)
	return session, nil
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 認可コードの交換には上限時間を設け、タイムアウトは失敗として扱う。
// subject IDに対応するユーザーが存在しない場合はストアが原子的に作成するため、
// 同じsubject IDの並行コールバックでも重複ユーザーは発生しない。
// 交換・解決のいずれかが失敗した場合、セッションもユーザーも作成されない。
func (s *Service) HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		s.recordLogin(provider, false)
		return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
	}

	// 1. 認可コードをプロバイダー確認済みのsubject IDに交換（上限時間付き）
	exchangeCtx, cancel := context.WithTimeout(ctx, s.config.ExchangeTimeout)
	defer cancel()

	info, err := p.Exchange(exchangeCtx, code)
	if err != nil {
		s.recordLogin(provider, false)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", model.ErrProviderTimeout, err)
		}
		return nil, fmt.Errorf("%w: %s", model.ErrProviderExchange, err)
	}

	// 2. subject IDからユーザーを取得または原子的に作成
	user, err := s.userRepo.FindOrCreateByProvider(ctx, info.Provider, info.SubjectID)
	if err != nil {
		s.recordLogin(provider, false)
		return nil, fmt.Errorf("failed to resolve federated user: %w", err)
	}

	slog.Info("federated user resolved",
		slog.String("user_id", user.ID),
		slog.String("provider", string(provider)),
	)

	// 3. セッションを発行
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.recordLogin(provider, false)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordLogin(provider, true)
	return session, nil
}

// Logout はセッションを破棄する。
// 冪等: 既に破棄済み・未知のトークンや空のトークンでもエラーにしない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser はセッショントークンを現在のユーザーに解決する。
// 未知・期限切れのトークンや、バインド先ユーザーが存在しない場合は
// エラーではなく(nil, nil)すなわち匿名として解決する。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// バインド先ユーザーが消えていても匿名として扱う
	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *Service) recordLogin(provider model.Provider, success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(string(provider), success)
	}
}

func (s *Service) recordRegistration(success bool) {
	if s.metrics != nil {
		s.metrics.RecordRegistration(success)
	}
}

// generateSessionID は暗号的に安全な不透明セッショントークンを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
