package ydb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/ydb-platform/ydb-go-sdk/v3"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
	yc "github.com/ydb-platform/ydb-go-yc"

	"github.com/makerloft/craftfolio-backend/internal/config"
)

// YDBClient implements the Database interface.
type YDBClient struct {
	driver       *ydb.Driver
	databasePath string
}

// NewYDBClient connects to YDB and optionally creates missing tables.
func NewYDBClient(ctx context.Context, cfg *config.Config) (*YDBClient, error) {
	endpoint := cfg.CFYDBEndpoint
	database := cfg.CFYDBDatabasePath

	if endpoint == "" || database == "" {
		return nil, fmt.Errorf("YDB credentials not provided. Please set CF_YDB_ENDPOINT and CF_YDB_DATABASE_PATH environment variables")
	}

	driver, err := ydb.Open(ctx, endpoint,
		ydb.WithDatabase(database),
		yc.WithMetadataCredentials(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to YDB: %w", err)
	}

	log.Println("Successfully connected to YDB")

	client := &YDBClient{
		driver:       driver,
		databasePath: database,
	}

	if cfg.CFYDBAutoCreateTables > 0 {
		log.Println("CF_YDB_AUTO_CREATE_TABLES is enabled, checking and creating tables...")
		if err := client.createTables(ctx); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return client, nil
}

// Close shuts down the database connection.
func (c *YDBClient) Close() error {
	if c.driver != nil {
		return c.driver.Close(context.Background())
	}
	return nil
}

func (c *YDBClient) createTables(ctx context.Context) error {
	tables := []struct {
		name  string
		query string
	}{
		{
			name: "users",
			query: `
				CREATE TABLE users (
					user_id Text NOT NULL,
					email Text NOT NULL,
					password_hash Text NOT NULL,
					full_name Text,
					role Text,
					email_verified Bool DEFAULT false,
					verification_code Text,
					verification_expires_at Optional<Timestamp>,
					created_at Timestamp,
					updated_at Timestamp,
					is_active Bool DEFAULT true,
					PRIMARY KEY (user_id),
					INDEX email_idx GLOBAL UNIQUE ON (email) COVER (password_hash, full_name, role, email_verified, is_active)
				)
			`,
		},
		{
			name: "uploads",
			query: `
				CREATE TABLE uploads (
					upload_id Text NOT NULL,
					owner_id Text NOT NULL,
					content_type Text,
					original_name Text,
					staging_key Text,
					state Text,
					created_at Timestamp,
					PRIMARY KEY (upload_id),
					INDEX owner_idx GLOBAL ON (owner_id),
					INDEX state_idx GLOBAL ON (state)
				)
			`,
		},
		{
			name: "portfolio_items",
			query: `
				CREATE TABLE portfolio_items (
					item_id Text NOT NULL,
					owner_id Text NOT NULL,
					title Text,
					content_html Text,
					image_keys Json,
					created_at Timestamp,
					updated_at Timestamp,
					PRIMARY KEY (item_id),
					INDEX owner_idx GLOBAL ON (owner_id)
				)
			`,
		},
		{
			name: "audit_logs",
			query: `
				CREATE TABLE audit_logs (
					id Text NOT NULL,
					timestamp Timestamp,
					user_id Text,
					action_type Text,
					action_result Text,
					details_json Json,
					PRIMARY KEY (id),
					INDEX user_idx GLOBAL ON (user_id),
					INDEX action_idx GLOBAL ON (action_type)
				)
			`,
		},
	}

	for i, t := range tables {
		log.Printf("Creating table: %s", t.name)
		exists, err := c.tableExists(ctx, t.name)
		if err != nil {
			return fmt.Errorf("failed to check %s table existence: %w", t.name, err)
		}
		if exists {
			log.Printf("Table %s already exists, skipping creation", t.name)
			continue
		}
		if err := c.executeSchemeQuery(ctx, t.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
		// Spacing out scheme operations avoids the per-database limit.
		if i < len(tables)-1 {
			time.Sleep(500 * time.Millisecond)
		}
	}

	return nil
}

// tableExists checks if a table exists in the database.
func (c *YDBClient) tableExists(ctx context.Context, tableName string) (bool, error) {
	fullPath := path.Join(c.databasePath, tableName)
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, err := session.DescribeTable(ctx, fullPath)
		return err
	})

	if err != nil {
		// YDB reports a missing path as a scheme error (code 400070).
		msg := err.Error()
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "does not exist") ||
			strings.Contains(msg, "Path not found") ||
			strings.Contains(msg, "code = 400070") {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (c *YDBClient) executeSchemeQuery(ctx context.Context, query string) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		return session.ExecuteSchemeQuery(ctx, query)
	})
}

func optionalText(value *string) types.Value {
	if value == nil {
		return types.NullValue(types.TypeText)
	}
	return types.OptionalValue(types.TextValue(*value))
}

func optionalTimestamp(value *time.Time) types.Value {
	if value == nil {
		return types.NullValue(types.TypeTimestamp)
	}
	return types.OptionalValue(types.TimestampValueFromTime(*value))
}

func textList(values []string) types.Value {
	items := make([]types.Value, len(values))
	for i, v := range values {
		items[i] = types.TextValue(v)
	}
	return types.ListValue(items...)
}

// CreateUser stores a new user.
func (c *YDBClient) CreateUser(ctx context.Context, user *User) error {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $email AS Text;
		DECLARE $password_hash AS Text;
		DECLARE $full_name AS Text;
		DECLARE $role AS Text;
		DECLARE $email_verified AS Bool;
		DECLARE $verification_code AS Optional<Text>;
		DECLARE $verification_expires_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;
		DECLARE $is_active AS Bool;

		REPLACE INTO users (
			user_id, email, password_hash, full_name, role, email_verified,
			verification_code, verification_expires_at, created_at, updated_at, is_active
		) VALUES ($user_id, $email, $password_hash, $full_name, $role, $email_verified,
			$verification_code, $verification_expires_at, $created_at, $updated_at, $is_active)
	`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(user.UserID)),
				table.ValueParam("$email", types.TextValue(user.Email)),
				table.ValueParam("$password_hash", types.TextValue(user.PasswordHash)),
				table.ValueParam("$full_name", types.TextValue(user.FullName)),
				table.ValueParam("$role", types.TextValue(user.Role)),
				table.ValueParam("$email_verified", types.BoolValue(user.EmailVerified)),
				table.ValueParam("$verification_code", optionalText(user.VerificationCode)),
				table.ValueParam("$verification_expires_at", optionalTimestamp(user.VerificationExpiresAt)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(user.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(user.UpdatedAt)),
				table.ValueParam("$is_active", types.BoolValue(user.IsActive)),
			),
		)
		return err
	})
}

func (c *YDBClient) getUser(ctx context.Context, query string, params *table.QueryParameters) (*User, error) {
	var user User
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			err := res.ScanNamed(
				named.Required("user_id", &user.UserID),
				named.Required("email", &user.Email),
				named.Required("password_hash", &user.PasswordHash),
				named.OptionalWithDefault("full_name", &user.FullName),
				named.OptionalWithDefault("role", &user.Role),
				named.OptionalWithDefault("email_verified", &user.EmailVerified),
				named.Optional("verification_code", &user.VerificationCode),
				named.Optional("verification_expires_at", &user.VerificationExpiresAt),
				named.OptionalWithDefault("created_at", &user.CreatedAt),
				named.OptionalWithDefault("updated_at", &user.UpdatedAt),
				named.OptionalWithDefault("is_active", &user.IsActive),
			)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user not found")
	}

	return &user, nil
}

// GetUserByID fetches a user by id.
func (c *YDBClient) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT user_id, email, password_hash, full_name, role, email_verified,
			   verification_code, verification_expires_at, created_at, updated_at, is_active
		FROM users
		WHERE user_id = $user_id
	`
	return c.getUser(ctx, query, table.NewQueryParameters(
		table.ValueParam("$user_id", types.TextValue(userID)),
	))
}

// GetUserByEmail fetches a user by email.
func (c *YDBClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		DECLARE $email AS Text;
		SELECT user_id, email, password_hash, full_name, role, email_verified,
			   verification_code, verification_expires_at, created_at, updated_at, is_active
		FROM users
		WHERE email = $email
	`
	return c.getUser(ctx, query, table.NewQueryParameters(
		table.ValueParam("$email", types.TextValue(email)),
	))
}

// UpdateUser rewrites a user row.
func (c *YDBClient) UpdateUser(ctx context.Context, user *User) error {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $email AS Text;
		DECLARE $password_hash AS Text;
		DECLARE $full_name AS Text;
		DECLARE $role AS Text;
		DECLARE $email_verified AS Bool;
		DECLARE $verification_code AS Optional<Text>;
		DECLARE $verification_expires_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;
		DECLARE $is_active AS Bool;

		REPLACE INTO users (
			user_id, email, password_hash, full_name, role, email_verified,
			verification_code, verification_expires_at, created_at, updated_at, is_active
		) VALUES ($user_id, $email, $password_hash, $full_name, $role, $email_verified,
			$verification_code, $verification_expires_at, $created_at, $updated_at, $is_active)
	`

	user.UpdatedAt = time.Now()

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(user.UserID)),
				table.ValueParam("$email", types.TextValue(user.Email)),
				table.ValueParam("$password_hash", types.TextValue(user.PasswordHash)),
				table.ValueParam("$full_name", types.TextValue(user.FullName)),
				table.ValueParam("$role", types.TextValue(user.Role)),
				table.ValueParam("$email_verified", types.BoolValue(user.EmailVerified)),
				table.ValueParam("$verification_code", optionalText(user.VerificationCode)),
				table.ValueParam("$verification_expires_at", optionalTimestamp(user.VerificationExpiresAt)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(user.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(user.UpdatedAt)),
				table.ValueParam("$is_active", types.BoolValue(user.IsActive)),
			),
		)
		return err
	})
}

// CreateUpload stores a new upload record.
func (c *YDBClient) CreateUpload(ctx context.Context, upload *Upload) error {
	return c.CreateUploads(ctx, []*Upload{upload})
}

// CreateUploads stores a batch of upload records in one call.
func (c *YDBClient) CreateUploads(ctx context.Context, uploads []*Upload) error {
	if len(uploads) == 0 {
		return nil
	}

	query := `
		DECLARE $upload_id AS Text;
		DECLARE $owner_id AS Text;
		DECLARE $content_type AS Text;
		DECLARE $original_name AS Text;
		DECLARE $staging_key AS Text;
		DECLARE $state AS Text;
		DECLARE $created_at AS Timestamp;

		REPLACE INTO uploads (upload_id, owner_id, content_type, original_name, staging_key, state, created_at)
		VALUES ($upload_id, $owner_id, $content_type, $original_name, $staging_key, $state, $created_at)
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		for _, upload := range uploads {
			_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
				table.NewQueryParameters(
					table.ValueParam("$upload_id", types.TextValue(upload.UploadID)),
					table.ValueParam("$owner_id", types.TextValue(upload.OwnerID)),
					table.ValueParam("$content_type", types.TextValue(upload.ContentType)),
					table.ValueParam("$original_name", types.TextValue(upload.OriginalName)),
					table.ValueParam("$staging_key", types.TextValue(upload.StagingKey)),
					table.ValueParam("$state", types.TextValue(string(upload.State))),
					table.ValueParam("$created_at", types.TimestampValueFromTime(upload.CreatedAt)),
				),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUploadsByIDs fetches the uploads among ids that are in the given state.
func (c *YDBClient) GetUploadsByIDs(ctx context.Context, ids []string, state UploadState) ([]*Upload, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		DECLARE $ids AS List<Text>;
		DECLARE $state AS Text;
		SELECT upload_id, owner_id, content_type, original_name, staging_key, state, created_at
		FROM uploads
		WHERE upload_id IN $ids AND state = $state
	`

	var uploads []*Upload
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$ids", textList(ids)),
				table.ValueParam("$state", types.TextValue(string(state))),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		uploads = uploads[:0]
		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var upload Upload
				var stateText string
				err := res.ScanNamed(
					named.Required("upload_id", &upload.UploadID),
					named.Required("owner_id", &upload.OwnerID),
					named.OptionalWithDefault("content_type", &upload.ContentType),
					named.OptionalWithDefault("original_name", &upload.OriginalName),
					named.OptionalWithDefault("staging_key", &upload.StagingKey),
					named.OptionalWithDefault("state", &stateText),
					named.OptionalWithDefault("created_at", &upload.CreatedAt),
				)
				if err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				upload.State = UploadState(stateText)
				uploads = append(uploads, &upload)
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, err
	}

	return uploads, nil
}

// MarkUploadsFinished flips every given upload to the finished state.
func (c *YDBClient) MarkUploadsFinished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		DECLARE $ids AS List<Text>;
		DECLARE $state AS Text;
		UPDATE uploads SET state = $state WHERE upload_id IN $ids
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$ids", textList(ids)),
				table.ValueParam("$state", types.TextValue(string(UploadStateFinished))),
			),
		)
		return err
	})
}

// DeleteUploadsByIDs deletes the uploads among ids that are in the given state.
func (c *YDBClient) DeleteUploadsByIDs(ctx context.Context, ids []string, state UploadState) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		DECLARE $ids AS List<Text>;
		DECLARE $state AS Text;
		DELETE FROM uploads WHERE upload_id IN $ids AND state = $state
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$ids", textList(ids)),
				table.ValueParam("$state", types.TextValue(string(state))),
			),
		)
		return err
	})
}

// CreatePortfolioItem stores a new portfolio item.
func (c *YDBClient) CreatePortfolioItem(ctx context.Context, item *PortfolioItem) error {
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	return c.writePortfolioItem(ctx, item)
}

// UpdatePortfolioItem rewrites a portfolio item row.
func (c *YDBClient) UpdatePortfolioItem(ctx context.Context, item *PortfolioItem) error {
	item.UpdatedAt = time.Now()
	return c.writePortfolioItem(ctx, item)
}

func (c *YDBClient) writePortfolioItem(ctx context.Context, item *PortfolioItem) error {
	query := `
		DECLARE $item_id AS Text;
		DECLARE $owner_id AS Text;
		DECLARE $title AS Text;
		DECLARE $content_html AS Text;
		DECLARE $image_keys AS Json;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		REPLACE INTO portfolio_items (item_id, owner_id, title, content_html, image_keys, created_at, updated_at)
		VALUES ($item_id, $owner_id, $title, $content_html, $image_keys, $created_at, $updated_at)
	`

	imageKeys := item.ImageKeys
	if imageKeys == nil {
		imageKeys = []string{}
	}
	keysJSON, err := json.Marshal(imageKeys)
	if err != nil {
		return fmt.Errorf("marshal image keys: %w", err)
	}

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$item_id", types.TextValue(item.ItemID)),
				table.ValueParam("$owner_id", types.TextValue(item.OwnerID)),
				table.ValueParam("$title", types.TextValue(item.Title)),
				table.ValueParam("$content_html", types.TextValue(item.ContentHTML)),
				table.ValueParam("$image_keys", types.JSONValue(string(keysJSON))),
				table.ValueParam("$created_at", types.TimestampValueFromTime(item.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(item.UpdatedAt)),
			),
		)
		return err
	})
}

func scanPortfolioItem(res result.Result) (*PortfolioItem, error) {
	var item PortfolioItem
	var keysJSON string
	err := res.ScanNamed(
		named.Required("item_id", &item.ItemID),
		named.Required("owner_id", &item.OwnerID),
		named.OptionalWithDefault("title", &item.Title),
		named.OptionalWithDefault("content_html", &item.ContentHTML),
		named.OptionalWithDefault("image_keys", &keysJSON),
		named.OptionalWithDefault("created_at", &item.CreatedAt),
		named.OptionalWithDefault("updated_at", &item.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if keysJSON != "" {
		if err := json.Unmarshal([]byte(keysJSON), &item.ImageKeys); err != nil {
			return nil, fmt.Errorf("unmarshal image keys: %w", err)
		}
	}
	return &item, nil
}

// GetPortfolioItem fetches a portfolio item by id.
func (c *YDBClient) GetPortfolioItem(ctx context.Context, itemID string) (*PortfolioItem, error) {
	query := `
		DECLARE $item_id AS Text;
		SELECT item_id, owner_id, title, content_html, image_keys, created_at, updated_at
		FROM portfolio_items
		WHERE item_id = $item_id
	`

	var item *PortfolioItem
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$item_id", types.TextValue(itemID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			item, err = scanPortfolioItem(res)
			if err != nil {
				return err
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("portfolio item not found")
	}

	return item, nil
}

// DeletePortfolioItem removes a portfolio item row.
func (c *YDBClient) DeletePortfolioItem(ctx context.Context, itemID string) error {
	query := `
		DECLARE $item_id AS Text;
		DELETE FROM portfolio_items WHERE item_id = $item_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$item_id", types.TextValue(itemID)),
			),
		)
		return err
	})
}

// ListPortfolioItemsByOwner fetches all items owned by a user.
func (c *YDBClient) ListPortfolioItemsByOwner(ctx context.Context, ownerID string) ([]*PortfolioItem, error) {
	query := `
		DECLARE $owner_id AS Text;
		SELECT item_id, owner_id, title, content_html, image_keys, created_at, updated_at
		FROM portfolio_items
		WHERE owner_id = $owner_id
		ORDER BY created_at DESC
	`

	var items []*PortfolioItem
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$owner_id", types.TextValue(ownerID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		items = items[:0]
		for res.NextResultSet(ctx) {
			for res.NextRow() {
				item, err := scanPortfolioItem(res)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// CreateAuditLog stores one audit trail entry.
func (c *YDBClient) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	query := `
		DECLARE $id AS Text;
		DECLARE $timestamp AS Timestamp;
		DECLARE $user_id AS Optional<Text>;
		DECLARE $action_type AS Text;
		DECLARE $action_result AS Text;
		DECLARE $details_json AS Json;

		REPLACE INTO audit_logs (id, timestamp, user_id, action_type, action_result, details_json)
		VALUES ($id, $timestamp, $user_id, $action_type, $action_result, $details_json)
	`

	detailsJSON := entry.DetailsJSON
	if detailsJSON == "" {
		detailsJSON = "{}"
	}

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$id", types.TextValue(entry.ID)),
				table.ValueParam("$timestamp", types.TimestampValueFromTime(entry.Timestamp)),
				table.ValueParam("$user_id", optionalText(entry.UserID)),
				table.ValueParam("$action_type", types.TextValue(entry.ActionType)),
				table.ValueParam("$action_result", types.TextValue(entry.ActionResult)),
				table.ValueParam("$details_json", types.JSONValue(detailsJSON)),
			),
		)
		return err
	})
}

// ListAuditLogs fetches audit entries matching the filter, newest first.
func (c *YDBClient) ListAuditLogs(ctx context.Context, filter *AuditLogFilter) ([]*AuditLog, error) {
	limit := 100
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	query := `
		DECLARE $user_id AS Text;
		DECLARE $action_type AS Text;
		DECLARE $result AS Text;
		DECLARE $limit AS Uint64;
		SELECT id, timestamp, user_id, action_type, action_result, details_json
		FROM audit_logs
		WHERE ($user_id = "" OR user_id = $user_id)
		  AND ($action_type = "" OR action_type = $action_type)
		  AND ($result = "" OR action_result = $result)
		ORDER BY timestamp DESC
		LIMIT $limit
	`

	var userID, actionType, result string
	if filter != nil {
		userID = filter.UserID
		actionType = filter.ActionType
		result = filter.Result
	}

	var entries []*AuditLog
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
				table.ValueParam("$action_type", types.TextValue(actionType)),
				table.ValueParam("$result", types.TextValue(result)),
				table.ValueParam("$limit", types.Uint64Value(uint64(limit))),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		entries = entries[:0]
		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var entry AuditLog
				err := res.ScanNamed(
					named.Required("id", &entry.ID),
					named.OptionalWithDefault("timestamp", &entry.Timestamp),
					named.Optional("user_id", &entry.UserID),
					named.OptionalWithDefault("action_type", &entry.ActionType),
					named.OptionalWithDefault("action_result", &entry.ActionResult),
					named.OptionalWithDefault("details_json", &entry.DetailsJSON),
				)
				if err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				entries = append(entries, &entry)
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, err
	}

	// Time-window filtering happens client side; the table is keyed by id.
	if filter != nil && (filter.From != nil || filter.To != nil) {
		filtered := entries[:0]
		for _, e := range entries {
			if filter.From != nil && e.Timestamp.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.Timestamp.After(*filter.To) {
				continue
			}
			filtered = append(filtered, e)
		}
		entries = filtered
	}

	return entries, nil
}
