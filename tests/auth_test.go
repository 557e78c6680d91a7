package tests

import (
	"context"
	"sort"
	"testing"

	"github.com/DataGusIT/EstacaoDoces/internal/config"
	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if !includeInactive && !u.Active {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if u, ok := r.users[id]; ok {
		u.Active = active
	}
	return nil
}

func newAuthFixture() (*fakeUserRepo, service.AuthService) {
	repo := newFakeUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	}
	return repo, service.NewAuthService(repo, cfg)
}

func TestLogin_Success(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	created, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria Silva", Password: "segredo123", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	resp, err := auth.Login(ctx, dto.LoginRequest{Username: "maria", Password: "segredo123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "maria", resp.User.Username)
	assert.Equal(t, model.RoleCashier, resp.User.Role)
}

func TestLogin_Rejections(t *testing.T) {
	repo, auth := newAuthFixture()
	ctx := context.Background()

	created, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "joao", Name: "João", Password: "segredo123", Role: model.RoleSupervisor,
	})
	require.NoError(t, err)

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "joao", Password: "errada"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "ninguem", Password: "segredo123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Deactivated accounts cannot log in even with the right password.
	require.NoError(t, repo.SetActive(ctx, uuid.MustParse(created.ID), false))
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "joao", Password: "segredo123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefresh_RotatesTokenPair(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	created, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "ana", Name: "Ana", Password: "segredo123", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	login, err := auth.Login(ctx, dto.LoginRequest{Username: "ana", Password: "segredo123"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, created.ID, refreshed.User.ID)

	_, err = auth.Refresh(ctx, "nonsense.token.here")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// A deactivated user's refresh token stops working immediately.
	require.NoError(t, auth.DeactivateUser(ctx, uuid.MustParse(created.ID)))
	_, err = auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrNoSuchUser)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "segredo123", Role: model.RoleCashier,
	})
	require.NoError(t, err)

	_, err = auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Outra Maria", Password: "outrasenha1", Role: model.RoleCashier,
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestUpdateUser_ChangesRoleAndPassword(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	created, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "carla", Name: "Carla", Password: "senhaantiga1", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	newRole := model.RoleSupervisor
	newPassword := "senhanova123"
	updated, err := auth.UpdateUser(ctx, id, dto.UpdateUserRequest{
		Role: &newRole, Password: &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSupervisor, updated.Role)

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "carla", Password: "senhaantiga1"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	resp, err := auth.Login(ctx, dto.LoginRequest{Username: "carla", Password: "senhanova123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSupervisor, resp.User.Role)
}

func TestListUsers_InactiveFilter(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	a, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "ativa", Name: "Ativa", Password: "segredo123", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	b, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: "inativa", Name: "Inativa", Password: "segredo123", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	require.NoError(t, auth.DeactivateUser(ctx, uuid.MustParse(b.ID)))

	active, err := auth.ListUsers(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	all, err := auth.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, auth.ReactivateUser(ctx, uuid.MustParse(b.ID)))
	active, err = auth.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
