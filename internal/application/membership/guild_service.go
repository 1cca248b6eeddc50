package membership

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// documentPrefix is the object key prefix for guild uploads
const documentPrefix = "guild_documents"

var (
	ErrGuildNameTaken = shared.NewDomainError("GUILD_NAME_TAKEN", "A guild with that name already exists")
	ErrGuildSlugTaken = shared.NewDomainError("GUILD_SLUG_TAKEN", "A guild with that slug already exists")
	ErrEmptyDocument  = shared.NewDomainError("EMPTY_DOCUMENT", "Document file is empty")
	ErrDocumentTooBig = shared.NewDomainError("DOCUMENT_TOO_LARGE", "Document exceeds the upload limit")
)

// GuildInput carries editable guild fields. Nil pointers leave a field
// unchanged on update. An empty Slug is regenerated from the name.
type GuildInput struct {
	Name        *string
	Slug        *string
	GuildLeadID *uuid.UUID
	Intro       *string
	Description *string
	Icon        *string
	IsActive    *bool
	Notes       *string
}

// UploadInput describes one uploaded file
type UploadInput struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	UploadedBy  *uuid.UUID
}

// DocumentLink is a time-limited download URL
type DocumentLink struct {
	Document  *membership.GuildDocument
	URL       string
	ExpiresAt time.Time
}

// GuildService manages guilds and their documents
type GuildService struct {
	guildRepo     membership.GuildRepository
	documentRepo  membership.GuildDocumentRepository
	storage       shared.ObjectStorage
	presignTTL    time.Duration
	maxUploadSize int64
	logger        *zap.Logger
}

// NewGuildService creates a guild service. maxUploadSize <= 0 disables the
// size check; presignTTL <= 0 uses the storage default.
func NewGuildService(
	guildRepo membership.GuildRepository,
	documentRepo membership.GuildDocumentRepository,
	storage shared.ObjectStorage,
	presignTTL time.Duration,
	maxUploadSize int64,
	logger *zap.Logger,
) *GuildService {
	return &GuildService{
		guildRepo:     guildRepo,
		documentRepo:  documentRepo,
		storage:       storage,
		presignTTL:    presignTTL,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create adds a guild. Name and slug must both be unused.
func (s *GuildService) Create(ctx context.Context, in GuildInput) (*membership.Guild, error) {
	if in.Name == nil {
		return nil, shared.NewDomainError("INVALID_GUILD_NAME", "Guild name cannot be empty")
	}
	guild, err := membership.NewGuild(*in.Name)
	if err != nil {
		return nil, err
	}
	apply(guild, in)
	if err := s.checkUnique(ctx, guild); err != nil {
		return nil, err
	}
	if err := s.guildRepo.Save(ctx, guild); err != nil {
		s.logger.Error("Failed to create guild", zap.String("name", guild.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Guild created", zap.String("guild_id", guild.ID.String()), zap.String("slug", guild.Slug))
	return guild, nil
}

// Update edits a guild. Renaming keeps the existing slug unless Slug is
// given.
func (s *GuildService) Update(ctx context.Context, id uuid.UUID, in GuildInput) (*membership.Guild, error) {
	guild, err := s.guildRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, shared.NewDomainError("INVALID_GUILD_NAME", "Guild name cannot be empty")
		}
		guild.Name = name
	}
	apply(guild, in)
	if err := s.checkUnique(ctx, guild); err != nil {
		return nil, err
	}
	guild.GuildLead = nil
	guild.Touch()
	if err := s.guildRepo.Save(ctx, guild); err != nil {
		return nil, err
	}
	return guild, nil
}

func apply(g *membership.Guild, in GuildInput) {
	if in.Slug != nil {
		g.Slug = membership.Slugify(*in.Slug)
		g.EnsureSlug()
	}
	if in.GuildLeadID != nil {
		lead := *in.GuildLeadID
		g.GuildLeadID = &lead
	}
	if in.Intro != nil {
		g.Intro = *in.Intro
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.Icon != nil {
		g.Icon = *in.Icon
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	if in.Notes != nil {
		g.Notes = *in.Notes
	}
}

func (s *GuildService) checkUnique(ctx context.Context, g *membership.Guild) error {
	if other, err := s.guildRepo.FindByName(ctx, g.Name); err == nil && other.ID != g.ID {
		return ErrGuildNameTaken
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if other, err := s.guildRepo.FindBySlug(ctx, g.Slug); err == nil && other.ID != g.ID {
		return ErrGuildSlugTaken
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

// UploadDocument stores the file in object storage and records it against
// the guild. The object is removed again if the record cannot be saved.
func (s *GuildService) UploadDocument(ctx context.Context, guildID uuid.UUID, in UploadInput) (*membership.GuildDocument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "upload_guild_document", "guild_id", guildID.String())
	defer span.End()

	if in.Size == 0 {
		return nil, ErrEmptyDocument
	}
	if s.maxUploadSize > 0 && in.Size > s.maxUploadSize {
		return nil, ErrDocumentTooBig
	}
	guild, err := s.guildRepo.FindByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = baseName(in.Filename)
	}
	doc := &membership.GuildDocument{
		BaseEntity:   shared.NewBaseEntity(),
		GuildID:      guild.ID,
		Name:         name,
		UploadedByID: in.UploadedBy,
	}
	doc.FilePath = DocumentKey(guild.ID, doc.ID, in.Filename)

	if err := s.storage.Put(ctx, doc.FilePath, in.Body, in.Size, in.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store %s: %w", doc.FilePath, err)
	}
	if err := s.documentRepo.Save(ctx, doc); err != nil {
		telemetry.RecordError(span, err)
		if derr := s.storage.Delete(context.WithoutCancel(ctx), doc.FilePath); derr != nil {
			s.logger.Warn("Failed to remove orphaned upload", zap.String("key", doc.FilePath), zap.Error(derr))
		}
		return nil, err
	}

	s.logger.Info("Guild document uploaded",
		zap.String("guild_id", guild.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int64("size", in.Size))
	return doc, nil
}

// DocumentKey is the object key for a guild document
func DocumentKey(guildID, docID uuid.UUID, filename string) string {
	return path.Join(documentPrefix, guildID.String(), docID.String(), baseName(filename))
}

// baseName strips any client-side directory, including Windows paths
func baseName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		return "file"
	}
	return base
}

// Documents lists a guild's documents, newest first
func (s *GuildService) Documents(ctx context.Context, guildID uuid.UUID) ([]membership.GuildDocument, error) {
	return s.documentRepo.FindByGuild(ctx, guildID)
}

// DownloadLink presigns a download URL for a document
func (s *GuildService) DownloadLink(ctx context.Context, documentID uuid.UUID) (*DocumentLink, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	url, expires, err := s.storage.PresignGet(ctx, doc.FilePath, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", doc.FilePath, err)
	}
	return &DocumentLink{Document: doc, URL: url, ExpiresAt: expires}, nil
}
