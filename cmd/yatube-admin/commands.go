package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/posts"
	"yatube/internal/user"
)

const usage = `usage: yatube-admin <resource> <command> [flags]

  group create -title T [-slug S] -description D
  group list
  group delete -id N
  post search [-q TEXT] [-author USERNAME]
  post delete -id N
  user list
  user delete -username U
  user promote -username U [-revoke]
`

// staff acts for the operator when a service call needs an actor.
var staff = &db.User{Username: "admin", IsStaff: true}

func run(ctx context.Context, users user.UserService, postSvc posts.PostService, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errors.New("missing resource or command")
	}
	resource, command, rest := args[0], args[1], args[2:]
	fs := flag.NewFlagSet(resource+" "+command, flag.ContinueOnError)
	fs.SetOutput(out)

	switch resource + " " + command {
	case "group create":
		title := fs.String("title", "", "group title")
		slug := fs.String("slug", "", "url slug, derived from the title when empty")
		description := fs.String("description", "", "group description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		group, err := postSvc.CreateGroup(ctx, posts.GroupInput{Title: *title, Slug: *slug, Description: *description})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(out, "created group %d %s\n", group.ID, group.Slug)

	case "group list":
		groups, err := postSvc.ListGroups(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
		for _, g := range groups {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
		}
		return tw.Flush()

	case "group delete":
		id := fs.Uint("id", 0, "group id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := postSvc.DeleteGroup(ctx, *id); err != nil {
			return describe(err)
		}
		fmt.Fprintf(out, "deleted group %d\n", *id)

	case "post search":
		query := fs.String("q", "", "text to look for")
		author := fs.String("author", "", "only posts by this username")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		filter := posts.PostFilter{Search: *query}
		if *author != "" {
			u, err := users.GetByUsername(ctx, *author)
			if err != nil {
				return describe(err)
			}
			filter.AuthorID = &u.ID
		}
		list, err := postSvc.ListPosts(ctx, filter)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tAUTHOR\tPUBLISHED\tTEXT")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Author.Username, p.PubDate.Format("2006-01-02 15:04"), excerpt(p.Text))
		}
		return tw.Flush()

	case "post delete":
		id := fs.Uint("id", 0, "post id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		post, err := postSvc.PostByID(ctx, *id)
		if err != nil {
			return describe(err)
		}
		if err := postSvc.DeletePost(ctx, staff, post); err != nil {
			return describe(err)
		}
		fmt.Fprintf(out, "deleted post %d\n", *id)

	case "user list":
		list, err := users.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tSTAFF")
		for _, u := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.IsStaff)
		}
		return tw.Flush()

	case "user delete":
		username := fs.String("username", "", "account to remove with all its posts, comments and follows")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := users.DeleteUser(ctx, *username); err != nil {
			return describe(err)
		}
		fmt.Fprintf(out, "deleted user %s\n", *username)

	case "user promote":
		username := fs.String("username", "", "account to change")
		revoke := fs.Bool("revoke", false, "remove staff rights instead")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := users.SetStaff(ctx, *username, !*revoke); err != nil {
			return describe(err)
		}
		fmt.Fprintf(out, "user %s staff=%t\n", *username, !*revoke)

	default:
		return fmt.Errorf("unknown command %q\n%s", resource+" "+command, usage)
	}
	return nil
}

// describe flattens validation errors into one line.
func describe(err error) error {
	ve, ok := common.IsValidation(err)
	if !ok {
		return err
	}
	var parts []string
	for field, msgs := range ve.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return errors.New(strings.Join(parts, "; "))
}

func excerpt(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if r := []rune(text); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return text
}
