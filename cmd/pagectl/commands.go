package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/api"
	"github.com/tendant/simple-pagedata/pkg/pagedata/config"
)

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var postType, title, status string
	var authorID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pagedata.PostStatus(status).IsValid() {
				return fmt.Errorf("invalid status: %s", status)
			}

			_, rt, err := runtimeFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer rt.Close()

			post := &pagedata.Post{
				Type:     postType,
				Title:    title,
				Status:   pagedata.PostStatus(status),
				AuthorID: authorID,
			}
			if err := rt.Repository.CreatePost(cmd.Context(), post); err != nil {
				return fmt.Errorf("create failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), pagedata.NewPostData(post))
		},
	}

	cmd.Flags().StringVar(&postType, "type", pagedata.PostTypePage, "post type")
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&status, "status", string(pagedata.StatusDraft), "initial status")
	cmd.Flags().Int64Var(&authorID, "author", 1, "author id")

	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "get <post-id>",
		Short: "Print the editor payload of a post",
		Long: `Print the response the editor receives from getData for a post.

With --expand, portable asset placeholders in post_content are replaced
with the configured asset and upload URLs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid post id: %s", args[0])
			}

			_, rt, err := runtimeFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer rt.Close()

			ctx := cmd.Context()
			post, err := rt.Repository.GetPost(ctx, id)
			if err != nil {
				return fmt.Errorf("post %d: %w", id, err)
			}

			resp := rt.Controller.GetData(ctx, post, pagedata.Response{}, pagedata.Payload{"sourceId": id})
			if !resp.OK() {
				return fmt.Errorf("getData failed for post %d", id)
			}
			if expand {
				if content, ok := resp["post_content"].(string); ok {
					resp["post_content"] = pagedata.ExpandPortableContent(content, rt.Assets.AssetURL(ctx), rt.Assets.UploadURL(ctx))
				}
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&expand, "expand", false, "expand portable asset URLs in post_content")

	return cmd
}

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	var data, content, contentFile, designOptions, designOptionsCSS string
	var updatePost bool

	cmd := &cobra.Command{
		Use:   "set <post-id>",
		Short: "Save editor data for a post",
		Long: `Save editor data for a post the same way the editor's setData action does.

Pass {"draft":true} in --data to keep an unpublished post a draft, or
{"inherit":true} to save a preview revision instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid post id: %s", args[0])
			}

			if contentFile != "" {
				b, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				content = string(b)
			}

			_, rt, err := runtimeFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer rt.Close()

			req := pagedata.Values{
				pagedata.FieldReady:                 "1",
				pagedata.FieldData:                  data,
				pagedata.FieldContent:               content,
				pagedata.FieldDesignOptions:         designOptions,
				pagedata.FieldDesignOptionsCompiled: designOptionsCSS,
			}
			if updatePost {
				req[pagedata.FieldUpdatePost] = "1"
			}

			resp := rt.Controller.SetData(cmd.Context(), req, pagedata.Response{}, pagedata.Payload{
				// The command line caller is trusted with every post
				"sourceId": pagedata.Checked{Status: true, ID: strconv.FormatInt(id, 10)},
			})
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("setData failed for post %d", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "serialized editor payload (vcv-data)")
	cmd.Flags().StringVar(&content, "content", "", "rendered post content (vcv-content)")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read rendered post content from a file")
	cmd.Flags().StringVar(&designOptions, "design-options", "", "page design options (vcv-settings-page-design-options)")
	cmd.Flags().StringVar(&designOptionsCSS, "design-options-css", "", "compiled design options CSS")
	cmd.Flags().BoolVar(&updatePost, "update-post", false, "run post update removal hooks before saving")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")

	return cmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	var subject int64
	var caps []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an editor token signed with PAGEDATA_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, _ := cmd.Flags().GetStringSlice("env-file")
			cfg, err := config.LoadServerConfig(files...)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("PAGEDATA_JWT_SECRET is not set")
			}
			if subject <= 0 {
				return fmt.Errorf("--subject must be a positive user id")
			}

			token, err := api.IssueToken(api.NewTokenAuth(cfg.JWTSecret), pagedata.NewActor(subject, caps...), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&subject, "subject", 0, "user id the token is issued to")
	cmd.Flags().StringSliceVar(&caps, "caps", []string{pagedata.CapEditPosts}, "capabilities granted")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rt, err := runtimeFromFlags(cmd, config.WithAutoMigrate(true))
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			defer rt.Close()

			if cfg.DatabaseType != "postgres" {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate for the memory database")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}

// NewEnvCommand creates the env command
func NewEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables pagectl and the server read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := config.Usage()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), usage)
			return nil
		},
	}
}
