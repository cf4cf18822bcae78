package budget

import (
	"fmt"
	"strings"
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// persist returns a fresh effect list asking for a save.
func persist() []domain.Effect {
	return []domain.Effect{domain.PersistRequested{}}
}

// Activate makes the profile active. Switching profiles ends any block episode.
func (e *Engine) Activate(profileID string) ([]domain.Effect, error) {
	if e.set.Find(profileID) == nil {
		return nil, fmt.Errorf("activate %q: %w", profileID, domain.ErrProfileNotFound)
	}
	if e.set.ActiveProfileID == profileID {
		return nil, nil
	}
	e.set.ActiveProfileID = profileID
	e.block = domain.BlockState{}
	return persist(), nil
}

// Deactivate stops tracking and ends any block episode.
func (e *Engine) Deactivate() []domain.Effect {
	if e.set.ActiveProfileID == "" {
		return nil
	}
	e.set.ActiveProfileID = ""
	e.block = domain.BlockState{}
	return persist()
}

// AddProfile appends an empty profile and returns its id.
func (e *Engine) AddProfile(name string) (string, []domain.Effect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("profile name is empty: %w", domain.ErrInvalidArgument)
	}
	id := e.newID()
	e.set.Profiles = append(e.set.Profiles, domain.Profile{ID: id, Name: name})
	return id, persist(), nil
}

// RemoveProfile deletes a profile, deactivating it first if needed.
func (e *Engine) RemoveProfile(profileID string) ([]domain.Effect, error) {
	for i := range e.set.Profiles {
		if e.set.Profiles[i].ID != profileID {
			continue
		}
		if e.set.ActiveProfileID == profileID {
			e.Deactivate()
		}
		for _, a := range e.set.Profiles[i].Apps {
			e.fired.clearApp(a.BundleID)
		}
		e.set.Profiles = append(e.set.Profiles[:i], e.set.Profiles[i+1:]...)
		return persist(), nil
	}
	return nil, fmt.Errorf("remove %q: %w", profileID, domain.ErrProfileNotFound)
}

// RenameProfile changes a profile's display name.
func (e *Engine) RenameProfile(profileID, name string) ([]domain.Effect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("profile name is empty: %w", domain.ErrInvalidArgument)
	}
	p := e.set.Find(profileID)
	if p == nil {
		return nil, fmt.Errorf("rename %q: %w", profileID, domain.ErrProfileNotFound)
	}
	p.Name = name
	return persist(), nil
}

// AddApp starts tracking an app in a profile. A zero limit means the default
// limit. Adding an app that is already tracked is a no-op.
func (e *Engine) AddApp(profileID, bundleID, name string, limit time.Duration) ([]domain.Effect, error) {
	bundleID = strings.TrimSpace(bundleID)
	if bundleID == "" {
		return nil, fmt.Errorf("bundle id is empty: %w", domain.ErrInvalidArgument)
	}
	p := e.set.Find(profileID)
	if p == nil {
		return nil, fmt.Errorf("add app to %q: %w", profileID, domain.ErrProfileNotFound)
	}
	if p.FindApp(bundleID) >= 0 {
		return nil, nil
	}
	if name == "" {
		name = bundleID
	}
	if limit == 0 {
		limit = e.cfg.DefaultAppLimit
	}
	p.Apps = append(p.Apps, domain.TrackedApp{
		BundleID:   bundleID,
		Name:       name,
		DailyLimit: e.clampLimit(limit),
	})
	return persist(), nil
}

// RemoveApp stops tracking an app. Removing the blocked app ends the episode.
func (e *Engine) RemoveApp(profileID, bundleID string) ([]domain.Effect, error) {
	p := e.set.Find(profileID)
	if p == nil {
		return nil, fmt.Errorf("remove app from %q: %w", profileID, domain.ErrProfileNotFound)
	}
	idx := p.FindApp(bundleID)
	if idx < 0 {
		return nil, fmt.Errorf("remove %q: %w", bundleID, domain.ErrAppNotFound)
	}
	p.Apps = append(p.Apps[:idx], p.Apps[idx+1:]...)
	if e.set.ActiveProfileID == profileID && e.block.IsBlocked() && e.block.App.ID == bundleID {
		e.block = domain.BlockState{}
	}
	e.fired.clearApp(bundleID)
	return persist(), nil
}

// SetLimit changes an app's daily limit, clamped to the configured minimum.
func (e *Engine) SetLimit(profileID, bundleID string, limit time.Duration) ([]domain.Effect, error) {
	p := e.set.Find(profileID)
	if p == nil {
		return nil, fmt.Errorf("set limit in %q: %w", profileID, domain.ErrProfileNotFound)
	}
	idx := p.FindApp(bundleID)
	if idx < 0 {
		return nil, fmt.Errorf("set limit for %q: %w", bundleID, domain.ErrAppNotFound)
	}
	p.Apps[idx].DailyLimit = e.clampLimit(limit)
	return persist(), nil
}

// Resolve maps a profile id or case-insensitive name to its id. An empty
// reference means the active profile.
func (e *Engine) Resolve(ref string) (string, error) {
	if ref == "" {
		if p := e.set.Active(); p != nil {
			return p.ID, nil
		}
		return "", fmt.Errorf("no active profile: %w", domain.ErrProfileNotFound)
	}
	if p := e.set.Find(ref); p != nil {
		return p.ID, nil
	}
	if p := e.set.FindByName(ref); p != nil {
		return p.ID, nil
	}
	return "", fmt.Errorf("profile %q: %w", ref, domain.ErrProfileNotFound)
}

func (e *Engine) clampLimit(limit time.Duration) time.Duration {
	if limit < e.cfg.MinAppLimit {
		return e.cfg.MinAppLimit
	}
	return limit
}
