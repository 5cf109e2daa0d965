package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	ProfilesPathKey    = "profiles.path"
	profilesFileMode   = 0o600
	profilesDirMode    = 0o700
	profilesConfigDir  = ".care"
	profilesConfigFile = "profiles.toml"
	tempFilePattern    = ".profiles-*.toml.tmp"
)

// Repository stores named portal profiles and the active profile name in a
// single versioned TOML file.
type Repository struct {
	profilesPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ProfileRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	profilesPath := cfg.GetString(ProfilesPathKey)
	if profilesPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		profilesPath = filepath.Join(homeDir, profilesConfigDir, profilesConfigFile)
	}

	profilesPath, err := normalizeProfilesPath(profilesPath)
	if err != nil {
		return nil, err
	}

	return &Repository{profilesPath: profilesPath, mu: lockForPath(profilesPath)}, nil
}

func (r *Repository) Path() string {
	return r.profilesPath
}

func (r *Repository) Save(ctx context.Context, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	return r.update(ctx, func(file *fileSchema) error {
		encoded := toSchema(profile)
		if i := file.indexOf(encoded.Name); i >= 0 {
			file.Profiles[i] = encoded
			return nil
		}
		file.Profiles = append(file.Profiles, encoded)
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.update(ctx, func(file *fileSchema) error {
		i := file.indexOf(name)
		if i < 0 {
			return fmt.Errorf("delete profile %q: %w", name, domain.ErrProfileNotFound)
		}
		file.Profiles = append(file.Profiles[:i], file.Profiles[i+1:]...)
		if file.Active == name {
			file.Active = ""
		}
		return nil
	})
}

func (r *Repository) SetActive(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.update(ctx, func(file *fileSchema) error {
		if name != "" && file.indexOf(name) < 0 {
			return fmt.Errorf("use profile %q: %w", name, domain.ErrProfileNotFound)
		}
		file.Active = name
		return nil
	})
}

func (r *Repository) Active(ctx context.Context) (string, error) {
	file, err := r.snapshot(ctx)
	if err != nil {
		return "", err
	}

	return file.Active, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (domain.Profile, error) {
	file, err := r.snapshot(ctx)
	if err != nil {
		return domain.Profile{}, err
	}

	if i := file.indexOf(name); i >= 0 {
		return fromSchema(file.Profiles[i]), nil
	}

	return domain.Profile{}, fmt.Errorf("get profile %q: %w", name, domain.ErrProfileNotFound)
}

func (r *Repository) List(ctx context.Context) ([]domain.Profile, error) {
	file, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(file.Profiles))
	for _, entry := range file.Profiles {
		profiles = append(profiles, fromSchema(entry))
	}

	return profiles, nil
}

func (r *Repository) snapshot(ctx context.Context) (fileSchema, error) {
	if err := ctx.Err(); err != nil {
		return fileSchema{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.readSchema()
}

func (r *Repository) update(ctx context.Context, apply func(*fileSchema) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	if err := apply(&file); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.profilesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read profiles file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode profiles file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeProfilesPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve profiles path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.profilesPath), profilesDirMode); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode profiles file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.profilesPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp profiles file: %w", err)
	}

	if err := tempFile.Chmod(profilesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp profiles file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp profiles file: %w", err)
	}

	if err := os.Rename(tempName, r.profilesPath); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(profile domain.Profile) profileSchema {
	return profileSchema{
		Name:    profile.Name,
		BaseURL: profile.BaseURL,
		Role:    string(profile.Role),
	}
}

func fromSchema(entry profileSchema) domain.Profile {
	profile := domain.Profile{Name: entry.Name, BaseURL: entry.BaseURL}
	if role, err := domain.ParseRole(entry.Role); err == nil {
		profile.Role = role
	}
	return profile
}
