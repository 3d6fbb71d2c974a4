package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebakara/early-passion-detection/internal/types"
)

var (
	childFirstName string
	childLastName  string
	childBirthdate string
	childGender    string
	childInterests []string
)

// childrenCmd manages child profiles
var childrenCmd = &cobra.Command{
	Use:   "children",
	Short: "Manage child profiles",
	Long: `Manage the child profiles on your account.

Available subcommands:
  list   - List children on the account
  add    - Add a child profile
  remove - Remove a child profile by id`,
}

var childrenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List children on the account",
	RunE:  runChildrenList,
}

var childrenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a child profile",
	Long: `Add a child profile to your account.

Example:
  passion children add --first-name Amina --birthdate 2019-04-02`,
	RunE: runChildrenAdd,
}

var childrenRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a child profile by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runChildrenRemove,
}

func init() {
	childrenAddCmd.Flags().StringVar(&childFirstName, "first-name", "", "Child's first name (required)")
	childrenAddCmd.Flags().StringVar(&childLastName, "last-name", "", "Child's last name")
	childrenAddCmd.Flags().StringVar(&childBirthdate, "birthdate", "", "Date of birth, YYYY-MM-DD (required)")
	childrenAddCmd.Flags().StringVar(&childGender, "gender", "", "Gender")
	childrenAddCmd.Flags().StringSliceVar(&childInterests, "interest", nil, "Initial interest (repeatable)")
	childrenAddCmd.MarkFlagRequired("first-name")
	childrenAddCmd.MarkFlagRequired("birthdate")

	childrenCmd.AddCommand(childrenListCmd)
	childrenCmd.AddCommand(childrenAddCmd)
	childrenCmd.AddCommand(childrenRemoveCmd)
}

func runChildrenList(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	children, err := a.client.ListChildren(ctx)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		fmt.Println("No children on this account yet. Add one with 'passion children add'.")
		return nil
	}

	now := time.Now()
	for _, child := range children {
		line := fmt.Sprintf("%4d  %s (age %d)", child.ID, child.DisplayName(), child.AgeYears(now))
		if len(child.InitialInterests) > 0 {
			line += "  interests: " + strings.Join(child.InitialInterests, ", ")
		}
		fmt.Println(line)
	}
	return nil
}

func runChildrenAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	dob, err := time.Parse("2006-01-02", childBirthdate)
	if err != nil {
		return fmt.Errorf("birthdate must be YYYY-MM-DD: %w", err)
	}

	in := types.ChildInput{
		FirstName:        childFirstName,
		LastName:         childLastName,
		DateOfBirth:      dob,
		Gender:           childGender,
		InitialInterests: childInterests,
	}
	if err := in.Validate(time.Now()); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	child, err := a.client.CreateChild(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (id %d)\n", child.DisplayName(), child.ID)
	return nil
}

func runChildrenRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("child id must be a number: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := a.client.DeleteChild(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Removed child %d\n", id)
	return nil
}
