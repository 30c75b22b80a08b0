package session

import (
	"context"
	"fmt"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/scrapers/journal"
	"strconv"
	"time"
)

const namespace = "session"

const (
	keyUsername   = "username"
	keyPassword   = "password"
	keyAuthDate   = "auth_date"
	keyIsLoggedIn = "is_logged_in"
)

// storage keys of the session cookies
var cookieKeys = map[string]string{
	journal.CookieSessionId: "session_id",
	journal.CookieCurrUch:   "curr_uch",
	journal.CookieRegion:    "region",
	journal.CookieUch:       "uch",
	journal.CookieUsername:  "username_cookie",
}

type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// State is what the validity of a session is derived from.
type State struct {
	IsLoggedIn    bool
	AuthTimestamp time.Time
}

// Valid reports whether the session is logged in and younger than Lifetime
// at the given time.
func (s State) Valid(now time.Time) bool {
	return s.IsLoggedIn && now.Sub(s.AuthTimestamp) < Lifetime
}

// Store persists the session under the "session" namespace of a kv.Store.
type Store struct {
	kv kv.NamespacedStore
}

func NewStore(store kv.Store) Store {
	return Store{kv: kv.Namespace(namespace, store)}
}

func (s Store) get(ctx context.Context, key string) (string, error) {
	value, _, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s Store) Credentials(ctx context.Context) (Credentials, error) {
	username, err := s.get(ctx, keyUsername)
	if err != nil {
		return Credentials{}, err
	}
	password, err := s.get(ctx, keyPassword)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, Password: password}, nil
}

// Cookies returns every session cookie, the ones never stored are empty.
func (s Store) Cookies(ctx context.Context) (journal.Cookies, error) {
	cookies := journal.NewCookies()
	for name, key := range cookieKeys {
		value, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		cookies[name] = value
	}
	return cookies, nil
}

func (s Store) State(ctx context.Context) (State, error) {
	loggedIn, err := s.get(ctx, keyIsLoggedIn)
	if err != nil {
		return State{}, err
	}
	authDate, err := s.get(ctx, keyAuthDate)
	if err != nil {
		return State{}, err
	}

	state := State{IsLoggedIn: loggedIn == "true"}
	if authDate != "" {
		seconds, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("parse %s %q: %w", keyAuthDate, authDate, err)
		}
		state.AuthTimestamp = time.Unix(seconds, 0)
	}
	return state, nil
}

// SaveLogin stores a successful login in one batch: credentials, every
// session cookie (absent ones empty), the auth timestamp and the logged in
// flag.
func (s Store) SaveLogin(ctx context.Context, creds Credentials, cookies journal.Cookies, at time.Time) error {
	return s.kv.Update(ctx, func(w kv.Writer) error {
		for name, key := range cookieKeys {
			err := w.Set(ctx, key, cookies[name])
			if err != nil {
				return err
			}
		}
		writes := [][2]string{
			{keyUsername, creds.Username},
			{keyPassword, creds.Password},
			{keyAuthDate, strconv.FormatInt(at.Unix(), 10)},
			{keyIsLoggedIn, "true"},
		}
		for _, write := range writes {
			err := w.Set(ctx, write[0], write[1])
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveCookies overwrites the stored value of every cookie present in
// cookies, the others are left alone.
func (s Store) SaveCookies(ctx context.Context, cookies journal.Cookies) error {
	return s.kv.Update(ctx, func(w kv.Writer) error {
		for name, value := range cookies {
			key, ok := cookieKeys[name]
			if !ok {
				continue
			}
			err := w.Set(ctx, key, value)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear logs the session out: the flag is unset, every cookie emptied and the
// credentials removed.
func (s Store) Clear(ctx context.Context) error {
	return s.kv.Update(ctx, func(w kv.Writer) error {
		err := w.Set(ctx, keyIsLoggedIn, "false")
		if err != nil {
			return err
		}
		for _, key := range cookieKeys {
			err := w.Set(ctx, key, "")
			if err != nil {
				return err
			}
		}
		for _, key := range []string{keyUsername, keyPassword, keyAuthDate} {
			err := w.Remove(ctx, key)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
