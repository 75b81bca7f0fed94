package storefront

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"mobilehub/internal/localstore"
	"mobilehub/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const directoryKey = "registeredUsers"

type seedAccount struct {
	id     int
	email  string
	secret string
	role   models.UserRole
}

var seedAccounts = []seedAccount{
	{id: 1, email: "admin@mobilehub.com", secret: "admin123", role: models.RoleAdmin},
	{id: 2, email: "user@mobilehub.com", secret: "user123", role: models.RoleUser},
}

// Directory is the client-side list of registered identities. Every change is
// written back to the local store before it becomes visible.
type Directory struct {
	mu         sync.RWMutex
	store      localstore.Store
	cost       int
	identities []models.Identity
}

func NewDirectory(store localstore.Store, cost int) (*Directory, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{store: store, cost: cost}

	raw, ok, err := store.Get(directoryKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &d.identities); err != nil {
			return nil, fmt.Errorf("failed to decode directory: %w", err)
		}
		return d, nil
	}

	seeded := make([]models.Identity, 0, len(seedAccounts))
	for _, acc := range seedAccounts {
		hash, err := d.hash(acc.secret)
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, models.Identity{ID: acc.id, Email: acc.email, SecretHash: hash, Role: acc.role})
	}
	if err := d.persist(seeded); err != nil {
		return nil, err
	}
	d.identities = seeded
	return d, nil
}

func (d *Directory) FindByEmail(email string) (models.Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.indexOf(email)
	if i < 0 {
		return models.Identity{}, false
	}
	return d.identities[i], true
}

// Verify returns the identity whose email and secret both match.
func (d *Directory) Verify(email, secret string) (models.Identity, error) {
	identity, ok := d.FindByEmail(email)
	if !ok {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.SecretHash), secretDigest(secret)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}
	return identity, nil
}

func (d *Directory) Add(email, secret string, role models.UserRole) (models.Identity, error) {
	hash, err := d.hash(secret)
	if err != nil {
		return models.Identity{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(email) >= 0 {
		return models.Identity{}, ErrEmailAlreadyRegistered
	}

	nextID := 1
	for _, identity := range d.identities {
		if identity.ID >= nextID {
			nextID = identity.ID + 1
		}
	}
	identity := models.Identity{ID: nextID, Email: email, SecretHash: hash, Role: role}

	updated := append(append([]models.Identity(nil), d.identities...), identity)
	if err := d.persist(updated); err != nil {
		return models.Identity{}, err
	}
	d.identities = updated
	return identity, nil
}

func (d *Directory) SetSecret(email, secret string) error {
	hash, err := d.hash(secret)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexOf(email)
	if i < 0 {
		return ErrEmailNotFound
	}

	updated := append([]models.Identity(nil), d.identities...)
	updated[i].SecretHash = hash
	if err := d.persist(updated); err != nil {
		return err
	}
	d.identities = updated
	return nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.identities)
}

// indexOf expects d.mu to be held.
func (d *Directory) indexOf(email string) int {
	for i, identity := range d.identities {
		if identity.Email == email {
			return i
		}
	}
	return -1
}

func (d *Directory) hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(secretDigest(secret), d.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// secretDigest keeps secrets of any length within bcrypt's 72-byte input.
func secretDigest(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(hex.EncodeToString(sum[:]))
}

func (d *Directory) persist(identities []models.Identity) error {
	encoded, err := json.Marshal(identities)
	if err != nil {
		return fmt.Errorf("failed to encode directory: %w", err)
	}
	if err := d.store.Set(directoryKey, string(encoded)); err != nil {
		return fmt.Errorf("failed to persist directory: %w", err)
	}
	return nil
}
