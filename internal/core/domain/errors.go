package domain

import "errors"

var ErrValidation = errors.New("invalid input")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

var ErrUserNotFound = errors.New("user not found")
var ErrProfileNotFound = errors.New("profile not found")
var ErrMovieNotFound = errors.New("movie not found")

var ErrMissingToken = errors.New("missing token")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("invalid token")

var ErrResetTokenInvalid = errors.New("reset token invalid or expired")
var ErrSearchFieldNotAllowed = errors.New("search field not allowed")
var ErrUpstream = errors.New("external movie source failed")
