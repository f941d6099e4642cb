package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Harikishanth/healbee/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateChat(ctx context.Context, userID int64, title string) (string, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO chats (id, user_id, title)
		VALUES ($1, $2, $3)`

	if _, err := s.db.ExecContext(ctx, query, id, userID, truncateRunes(title, maxChatTitleChars)); err != nil {
		return "", fmt.Errorf("error creating chat: %w", err)
	}
	return id, nil
}

func (s *PostgresStorage) ListChats(ctx context.Context, userID int64) ([]models.Chat, error) {
	query := `
		SELECT id, user_id, title, created_at
		FROM chats
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *PostgresStorage) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	query := `
		UPDATE chats
		SET title = $1
		WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, truncateRunes(title, maxChatTitleChars), chatID)
	if err != nil {
		return fmt.Errorf("error updating chat title: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chat not found")
	}
	return nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, chatID, role, content string) error {
	query := `
		INSERT INTO messages (chat_id, role, content)
		VALUES ($1, $2, $3)`

	if _, err := s.db.ExecContext(ctx, query, chatID, role, content); err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	query := `
		SELECT role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *PostgresStorage) RecentMessagesFromOtherChats(ctx context.Context, userID int64, excludeChatID string, limit int) ([]models.ChatMessage, error) {
	// Newest few chats first, two latest messages each, mirroring what
	// the session loader wants for continuity excerpts.
	chatQuery := `
		SELECT id
		FROM chats
		WHERE user_id = $1 AND id <> $2
		ORDER BY created_at DESC
		LIMIT 3`

	rows, err := s.db.QueryContext(ctx, chatQuery, userID, excludeChatID)
	if err != nil {
		return nil, fmt.Errorf("error querying other chats: %w", err)
	}
	defer rows.Close()

	var chatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning chat id: %w", err)
		}
		chatIDs = append(chatIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgQuery := `
		SELECT role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT 2`

	var out []models.ChatMessage
	for _, cid := range chatIDs {
		msgRows, err := s.db.QueryContext(ctx, msgQuery, cid)
		if err != nil {
			return nil, fmt.Errorf("error querying other-chat messages: %w", err)
		}
		msgs, err := scanMessages(msgRows)
		msgRows.Close()
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			m.Content = truncateRunes(m.Content, 500)
			out = append(out, m)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func scanMessages(rows *sql.Rows) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PostgresStorage) GetUserMemory(ctx context.Context, userID int64) (map[string]string, error) {
	query := `
		SELECT key, value
		FROM user_memory
		WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying user memory: %w", err)
	}
	defer rows.Close()

	memory := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("error scanning memory entry: %w", err)
		}
		memory[key] = value
	}
	return memory, rows.Err()
}

func (s *PostgresStorage) UpsertUserMemory(ctx context.Context, userID int64, key, value string) error {
	query := `
		INSERT INTO user_memory (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, userID, key, truncateRunes(value, maxMemoryValueChars)); err != nil {
		return fmt.Errorf("error upserting user memory: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `
		SELECT name, age, gender, height_cm, weight_kg,
		       medical_history, allergies, chronic_conditions,
		       pregnancy_status, additional_notes, location, preferred_language
		FROM user_profile
		WHERE user_id = $1`

	var (
		name, gender, notes, location, lang sql.NullString
		age                                 sql.NullInt64
		heightCm, weightKg                  sql.NullFloat64
		pregnancy                           sql.NullBool
		history, allergies, chronic         pq.StringArray
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&name, &age, &gender, &heightCm, &weightKg,
		&history, &allergies, &chronic,
		&pregnancy, &notes, &location, &lang,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user profile: %w", err)
	}

	profile := &models.UserProfile{
		Name:              name.String,
		Gender:            gender.String,
		MedicalHistory:    history,
		ChronicConditions: chronic,
		Allergies:         models.AllergyField{Items: allergies},
		AdditionalNotes:   notes.String,
		Location:          location.String,
		PreferredLanguage: lang.String,
	}
	if age.Valid {
		v := int(age.Int64)
		profile.Age = &v
	}
	if heightCm.Valid {
		v := heightCm.Float64
		profile.HeightCm = &v
	}
	if weightKg.Valid {
		v := weightKg.Float64
		profile.WeightKg = &v
	}
	if pregnancy.Valid {
		v := pregnancy.Bool
		profile.PregnancyStatus = &v
	}
	return profile, nil
}

func (s *PostgresStorage) UpsertUserProfile(ctx context.Context, userID int64, profile *models.UserProfile) error {
	p := clampProfile(profile)
	query := `
		INSERT INTO user_profile (user_id, name, age, gender, height_cm, weight_kg,
		                          medical_history, allergies, chronic_conditions,
		                          pregnancy_status, additional_notes, location,
		                          preferred_language, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET name = EXCLUDED.name,
		              age = EXCLUDED.age,
		              gender = EXCLUDED.gender,
		              height_cm = EXCLUDED.height_cm,
		              weight_kg = EXCLUDED.weight_kg,
		              medical_history = EXCLUDED.medical_history,
		              allergies = EXCLUDED.allergies,
		              chronic_conditions = EXCLUDED.chronic_conditions,
		              pregnancy_status = EXCLUDED.pregnancy_status,
		              additional_notes = EXCLUDED.additional_notes,
		              location = EXCLUDED.location,
		              preferred_language = EXCLUDED.preferred_language,
		              updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		userID,
		nullString(strings.TrimSpace(p.Name)),
		nullInt(p.Age),
		nullString(p.Gender),
		nullFloat(p.HeightCm),
		nullFloat(p.WeightKg),
		pq.Array(p.MedicalHistory),
		pq.Array(p.Allergies.List(maxAllergyItems)),
		pq.Array(p.ChronicConditions),
		nullBool(p.PregnancyStatus),
		nullString(strings.TrimSpace(p.AdditionalNotes)),
		nullString(p.Location),
		nullString(p.PreferredLanguage),
	)
	if err != nil {
		return fmt.Errorf("error upserting user profile: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
