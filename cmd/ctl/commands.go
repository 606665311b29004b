package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cafebook/infras/jwt"
	reminderService "cafebook/internal/domains/reminder/service"
	"cafebook/internal/domains/reservation/model/dto"
	reservationService "cafebook/internal/domains/reservation/service"
)

type deps struct {
	reservations reservationService.Reservation
	reminders    reminderService.Reminder
	jwt          jwt.JWT
}

type slotFlags struct {
	resource string
	date     string
	start    string
	end      string
}

func (f *slotFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resource, "resource", "", "resource name")
	cmd.Flags().StringVar(&f.date, "date", "", "date, YYYY/MM/DD")
	cmd.Flags().StringVar(&f.start, "start", "", "start time, HH:MM")
	cmd.Flags().StringVar(&f.end, "end", "", "end time, HH:MM")
}

func (f *slotFlags) request() dto.SlotRequest {
	return dto.SlotRequest{ResourceName: f.resource, Date: f.date, StartTime: f.start, EndTime: f.end}
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	return nil
}

func newRootCmd(load func() *deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cafebook-ctl",
		Short:        "Operate the cafebook reservation store",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRecentCmd(load),
		newFindCmd(load),
		newAvailabilityCmd(load),
		newCancelCmd(load),
		newRemindOnceCmd(load),
		newTokenCmd(load),
	)

	return rootCmd
}

func newRecentCmd(load func() *deps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the newest reservations first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reservations, err := load().reservations.RecentReservations(cmd.Context(), limit)
			if err != nil {
				return err
			}

			res := dto.GetReservationsResponse{}
			res.FromModels(reservations)

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default from RESERVATION_RECENT_LIMIT)")

	return cmd
}

func newFindCmd(load func() *deps) *cobra.Command {
	req := dto.FindRequest{}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find reservations by owner, date or resource",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reservations, err := load().reservations.FindReservations(cmd.Context(), req)
			if err != nil {
				return err
			}

			res := dto.GetReservationsResponse{}
			res.FromModels(reservations)

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "owner id")
	cmd.Flags().StringVar(&req.Date, "date", "", "date, YYYY/MM/DD")
	cmd.Flags().StringVar(&req.ResourceName, "resource", "", "resource name")
	cmd.Flags().BoolVar(&req.ActiveOnly, "active", false, "hide reservations that have ended")

	return cmd
}

func newAvailabilityCmd(load func() *deps) *cobra.Command {
	var slot slotFlags

	cmd := &cobra.Command{
		Use:   "availability RESOURCE...",
		Short: "Show which resources are free for a window",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load().reservations.CheckAvailability(cmd.Context(), dto.AvailabilityRequest{
				Resources: args,
				Date:      slot.date,
				StartTime: slot.start,
				EndTime:   slot.end,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	slot.bind(cmd)

	return cmd
}

func newCancelCmd(load func() *deps) *cobra.Command {
	var (
		slot  slotFlags
		owner string
	)

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a reservation on behalf of its owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reservation, err := load().reservations.Cancel(cmd.Context(), slot.request(), owner)
			if err != nil {
				return err
			}

			res := dto.ReservationResponse{}
			res.FromModel(reservation)

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	slot.bind(cmd)
	cmd.Flags().StringVar(&owner, "owner", "", "owner id of the reservation")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func newRemindOnceCmd(load func() *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "remind-once",
		Short: "Run one reminder tick and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := load().reminders.Tick(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newTokenCmd(load func() *deps) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "token USER_ID",
		Short: "Mint an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := load().jwt.GenerateAccessToken(args[0], name)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), token)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name carried in the token")

	return cmd
}
