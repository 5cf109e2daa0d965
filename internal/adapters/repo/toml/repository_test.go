package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, path string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(ProfilesPathKey, path)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	clinic := domain.Profile{Name: "clinic", BaseURL: "https://clinic.example.test", Role: domain.RoleDoctor}
	local := domain.Profile{Name: "local", BaseURL: "http://localhost:5000"}

	require.NoError(t, repo.Save(context.Background(), clinic))
	require.NoError(t, repo.Save(context.Background(), local))

	got, err := repo.GetByName(context.Background(), "clinic")
	require.NoError(t, err)
	assert.Equal(t, clinic, got)

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Profile{clinic, local}, profiles)
}

func TestRepositorySaveReplacesProfileWithSameName(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	require.NoError(t, repo.Save(context.Background(), domain.Profile{Name: "clinic", BaseURL: "http://old.test"}))
	require.NoError(t, repo.Save(context.Background(), domain.Profile{Name: "clinic", BaseURL: "http://new.test", Role: domain.RolePharmacist}))

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "http://new.test", profiles[0].BaseURL)
	assert.Equal(t, domain.RolePharmacist, profiles[0].Role)
}

func TestRepositorySaveRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	err := repo.Save(context.Background(), domain.Profile{Name: "bad", BaseURL: "ftp://clinic"})
	require.Error(t, err)

	_, statErr := os.Stat(repo.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRepositoryActiveProfileLifecycle(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))
	ctx := context.Background()

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.ErrorIs(t, repo.SetActive(ctx, "clinic"), domain.ErrProfileNotFound)

	require.NoError(t, repo.Save(ctx, domain.Profile{Name: "clinic", BaseURL: "https://clinic.example.test"}))
	require.NoError(t, repo.SetActive(ctx, "clinic"))

	active, err = repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clinic", active)

	require.NoError(t, repo.Delete(ctx, "clinic"))

	active, err = repo.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.Profile{Name: "local", BaseURL: "http://localhost:5000"}))

	profilesPath := filepath.Join(homeDir, ".care", "profiles.toml")
	assert.Equal(t, profilesPath, repo.Path())
	info, err := os.Stat(profilesPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "profiles.toml"))

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, err = repo.GetByName(context.Background(), "clinic")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	err = repo.Delete(context.Background(), "clinic")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRepositoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte("profiles = ["), 0o600))

	repo := newTestRepository(t, profilesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode profiles file")
}

func TestRepositoryIgnoresUnknownRoleInFile(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[profiles]]",
		"name = \"clinic\"",
		"base_url = \"https://clinic.example.test\"",
		"role = \"nurse\"",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, profilesPath)

	profile, err := repo.GetByName(context.Background(), "clinic")
	require.NoError(t, err)
	assert.Equal(t, domain.Role(""), profile.Role)
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.Profile{Name: "local", BaseURL: "http://localhost:5000"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryConcurrentSavesAcrossInstancesPreserveAllProfiles(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	repoA := newTestRepository(t, profilesPath)
	repoB := newTestRepository(t, profilesPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *Repository, prefix string) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repo.Save(context.Background(), domain.Profile{Name: prefix + strconv.Itoa(i), BaseURL: "http://localhost:5000"})
		}
	}

	go write(repoA, "a-")
	go write(repoB, "b-")

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	profiles, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, perRepoWrites*2)
}

func TestRepositorySaveSerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	require.NoError(t, repo.Save(context.Background(), domain.Profile{Name: "local", BaseURL: "http://localhost:5000"}))

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "[[profiles]]")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte("version = 999\n\nprofiles = []\n"), 0o600))

	repo := newTestRepository(t, profilesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported profiles schema version")
}
