package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core/user"
)

var errRoleRequired = errors.New("new users need -admin; mentors and mentees are registered through the API")

// addUser updates or creates a user.User. Admins get an admin profile.
func (cli *commandLine) addUser(email, pwd, name string, isAdmin bool) error {
	ctx := context.Background()

	usr, err := cli.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if isAdmin {
			usr.Role = user.RoleAdmin
		}
		usr.IsActive = true
		if usr, err = cli.users.Update(ctx, usr); err != nil {
			return err
		}
		if usr, err = cli.users.SetPassword(ctx, usr, pwd, false); err != nil {
			return err
		}
	case errors.Cause(err) == user.ErrNotFound:
		if !isAdmin {
			return errRoleRequired
		}
		usr, err = cli.users.Create(ctx, user.NewUser{
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            user.RoleAdmin,
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	if usr.IsAdmin() {
		if _, err := cli.profiles.SaveAdmin(ctx, usr, name); err != nil {
			return errors.Wrap(err, "saving admin profile")
		}
	}
	return nil
}
