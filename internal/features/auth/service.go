package auth

import (
	"context"
	"errors"
	"time"

	"go-obra/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("correo o contraseña incorrectos")
	ErrEmailTaken         = errors.New("el correo ya está registrado")
)

type AuthService interface {
	Register(ctx context.Context, email, password, nombre string) (*User, error)
	// Login verifies credentials, publishes the session and returns a
	// signed token
	Login(ctx context.Context, email, password string) (string, *Session, error)
	Logout()
}

type AuthServiceImpl struct {
	UserRepo UserRepository
	Broker   *SessionBroker
}

func NewAuthService(userRepo UserRepository, broker *SessionBroker) AuthService {
	return &AuthServiceImpl{
		UserRepo: userRepo,
		Broker:   broker,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, email, password, nombre string) (*User, error) {
	if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Nombre:    nombre,
		Password:  string(hashed),
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.UserRepo.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *Session, error) {
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	session := &Session{UserID: user.ID.Hex(), Email: user.Email}
	s.Broker.Publish(session)
	return token, session, nil
}

func (s *AuthServiceImpl) Logout() {
	s.Broker.Publish(nil)
}
