package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

type RegisterOptions struct {
	*RootOptions
	market.RegisterData
}

func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with your college email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Session.Register(ctx, opts.RegisterData)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "college email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	cmd.Flags().StringVar(&opts.ConfirmPassword, "confirm-password", "", "repeat the password")
	cmd.Flags().StringVar(&opts.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&opts.StudentID, "student-id", "", "student id")
	cmd.Flags().StringVar(&opts.PhoneNumber, "phone", "", "phone number (used for WhatsApp contact)")
	cmd.Flags().StringVar(&opts.HostelDetails, "hostel", "", "hostel and room")

	return cmd
}

type LoginOptions struct {
	*RootOptions
	Email    string
	Password string
}

func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Session.Login(ctx, opts.Email, opts.Password)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "college email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Session.Logout(ctx)
			})
		},
	}
}

func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				app.Session.Wait()
				u := app.Session.User()
				return rootOpts.Output().Print(u, func(w io.Writer) {
					fmt.Fprintf(w, "%s <%s>\n", orDash(u.FullName), u.Email)
					fmt.Fprintf(w, "  id:         %s\n", u.ID)
					fmt.Fprintf(w, "  student id: %s\n", orDash(u.StudentID))
					fmt.Fprintf(w, "  phone:      %s\n", orDash(u.PhoneNumber))
					fmt.Fprintf(w, "  hostel:     %s\n", orDash(u.HostelDetails))
				})
			})
		},
	}
}

type ProfileUpdateOptions struct {
	*RootOptions
	FullName      string
	StudentID     string
	PhoneNumber   string
	HostelDetails string
	AvatarFile    string
}

func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileUpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; flags left out stay as they are",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				var u market.ProfileUpdate
				u.FullName = changed(cmd, "name", opts.FullName)
				u.StudentID = changed(cmd, "student-id", opts.StudentID)
				u.PhoneNumber = changed(cmd, "phone", opts.PhoneNumber)
				u.HostelDetails = changed(cmd, "hostel", opts.HostelDetails)
				if opts.AvatarFile != "" {
					url, err := app.Backend.UploadImage(ctx, "avatar", opts.AvatarFile)
					if err != nil {
						return err
					}
					u.AvatarURL = &url
				}
				return app.Session.UpdateProfile(ctx, u)
			})
		},
	}

	cmd.Flags().StringVar(&opts.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&opts.StudentID, "student-id", "", "student id")
	cmd.Flags().StringVar(&opts.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&opts.HostelDetails, "hostel", "", "hostel and room")
	cmd.Flags().StringVar(&opts.AvatarFile, "avatar", "", "image file to upload as avatar")

	return cmd
}
