package domain

import (
	"encoding/json"
	"io"
	"time"

	"github.com/cristalhq/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password,omitempty" json:"-"`
	RefreshHash  string               `bson:"refreshHash,omitempty" json:"-"`
	IsAdmin      bool                 `bson:"isAdmin" json:"isAdmin"`
	ProfileImage string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Items        []primitive.ObjectID `bson:"items" json:"items"`
}

// SetPassword hashes the given plaintext with bcrypt and stores the hash.
// Plaintext passwords are never persisted.
func (user *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether the given plaintext matches the stored
// hash. A user without a password (invited but not yet registered) never
// matches.
func (user *User) VerifyPassword(plaintext string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// IsRegistered reports whether the user completed registration. A user
// created through an invite has no password until they do.
func (user *User) IsRegistered() bool {
	return user.PasswordHash != ""
}

func (user *User) HasItem(itemID primitive.ObjectID) bool {
	for _, id := range user.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

func (user *User) Scope() string {
	if user.IsAdmin {
		return ScopeAdmin
	}
	return ScopeUser
}

const (
	ScopeAdmin = "admin"
	ScopeUser  = "user"
)

type Address struct {
	Street  *string  `bson:"street,omitempty" json:"street,omitempty"`
	Zip     *string  `bson:"zip,omitempty" json:"zip,omitempty"`
	City    *string  `bson:"city,omitempty" json:"city,omitempty"`
	Country *string  `bson:"country,omitempty" json:"country,omitempty"`
	Lat     *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Long    *float64 `bson:"long,omitempty" json:"long,omitempty"`
}

type Info struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Message string             `bson:"message" json:"message"`
	Image   string             `bson:"image,omitempty" json:"image,omitempty"`
}

type Place struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
}

// Item is a bookable listing. Name and Slug are set at creation and never
// change. Owner is set at creation and cannot be removed through unregister.
type Item struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Slug        string               `bson:"slug" json:"slug"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Managers    []primitive.ObjectID `bson:"managers" json:"managers"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Address     Address              `bson:"address,omitempty" json:"address"`
	Images      []string             `bson:"images" json:"images"`
	Equipments  []string             `bson:"equipments" json:"equipments"`
	Infos       []Info               `bson:"infos" json:"infos"`
	Places      []Place              `bson:"places" json:"places"`
}

// InfoIndex returns the index of the info with the given id, or -1.
func (item *Item) InfoIndex(id primitive.ObjectID) int {
	for i, info := range item.Infos {
		if info.ID == id {
			return i
		}
	}
	return -1
}

// PlaceIndex returns the index of the place with the given id, or -1.
func (item *Item) PlaceIndex(id primitive.ObjectID) int {
	for i, place := range item.Places {
		if place.ID == id {
			return i
		}
	}
	return -1
}

const BookingStatusPending = "pending"

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date      time.Time          `bson:"date" json:"date"`
	Item      primitive.ObjectID `bson:"item" json:"item"`
	User      primitive.ObjectID `bson:"user,omitempty" json:"user"`
	Status    string             `bson:"status" json:"status"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message   string             `bson:"message" json:"message"`
	Images    []string           `bson:"images" json:"images"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Item      primitive.ObjectID `bson:"item" json:"item"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	ActionRegister      = "register"
	ActionPasswordReset = "password-reset"
)

// AccessClaims is the claim set of short-lived API tokens. The audience
// binds the token to one deployment; verification rejects any token whose
// audience does not match.
type AccessClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	Scope   string `json:"scope,omitempty"`
}

// RefreshClaims is the claim set of long-lived refresh tokens. Hash must
// match the current value persisted on the user; rotation overwrites it.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Hash string `json:"hash,omitempty"`
}

// ActionClaims is the claim set of single-purpose tokens (registration
// completion, password reset).
type ActionClaims struct {
	jwt.RegisteredClaims
	Action string `json:"action,omitempty"`
}

func (user *User) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(user)
}

func (item *Item) ToJSON(writer io.Writer) error {
	e := json.NewEncoder(writer)
	return e.Encode(item)
}
