// Package auth implements the market's authenticator: an Authority state
// machine with a permanent blacklist, served over REGISTER, VERIFY and
// CHECK_PERMISSION requests.
package auth
