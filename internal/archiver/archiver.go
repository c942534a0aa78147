package archiver

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"webex-room-archiver/internal/archivefolder"
	"webex-room-archiver/internal/attachments"
	"webex-room-archiver/internal/downloader"
	"webex-room-archiver/internal/grouping"
	"webex-room-archiver/internal/models"
	"webex-room-archiver/internal/people"
	"webex-room-archiver/internal/render"
	"webex-room-archiver/internal/webexapi"
)

// Archiver turns one room's message history into a compressed archive
// bundle. Instances share no mutable state, so callers may archive
// different rooms with separate Archivers concurrently; one room must
// only ever be archived by one run at a time.
type Archiver struct {
	client     webexapi.Client
	probe      *attachments.Probe
	downloader *downloader.Downloader
	renderer   *render.Renderer
	log        logrus.FieldLogger
}

// New creates an Archiver from its collaborators
func New(client webexapi.Client, probe *attachments.Probe, dl *downloader.Downloader, renderer *render.Renderer, log logrus.FieldLogger) *Archiver {
	return &Archiver{
		client:     client,
		probe:      probe,
		downloader: dl,
		renderer:   renderer,
		log:        log,
	}
}

// ArchiveRoom archives one room end to end and returns the bundle file
// name. The archive attempt is all-or-nothing: any failure after the
// working folder was created tears the folder down before the error is
// returned.
func (a *Archiver) ArchiveRoom(roomID string, opts models.ArchiveConfig) (string, error) {
	runLog := a.log.WithFields(logrus.Fields{
		"run_id":  uuid.New().String(),
		"room_id": roomID,
	})

	room, err := a.client.GetRoom(roomID)
	if err != nil {
		return "", err
	}

	directory := people.NewDirectory(a.client, runLog)

	creator, err := directory.Lookup(room.CreatorID)
	if err != nil {
		return "", err
	}

	me, err := a.client.GetMe()
	if err != nil {
		return "", err
	}

	// Bots can only list messages that mention them
	mention := ""
	if me.Type == "bot" {
		mention = "me"
	}

	messages, err := a.client.ListMessages(roomID, mention)
	if err != nil {
		return "", err
	}
	runLog.Infof("Fetched %d messages from room %q", len(messages), room.Title)

	folderName := models.SanitizeName(room.Title) + "_" + room.ID
	folder := archivefolder.New(opts.OutputDir, folderName, runLog)

	if err := folder.Create(opts.OverwriteFolder, opts.DownloadAttachments, opts.DownloadAvatars, opts.HTMLFormat); err != nil {
		return "", err
	}

	bundle, err := a.buildArchive(folder, directory, room, creator, messages, opts, runLog)
	if err != nil {
		if teardownErr := folder.Destroy(); teardownErr != nil {
			runLog.WithError(teardownErr).Error("Folder teardown failed")
		}
		return "", err
	}

	if opts.DeleteFolder {
		if err := folder.Destroy(); err != nil {
			return "", err
		}
	}

	return bundle, nil
}

// buildArchive runs the resolution pass, renders the requested outputs,
// downloads the referenced binaries, and compresses the folder.
func (a *Archiver) buildArchive(folder *archivefolder.Folder, directory *people.Directory,
	room *models.Room, creator *models.Person, messages []models.Message,
	opts models.ArchiveConfig, runLog logrus.FieldLogger) (string, error) {

	refs, err := a.resolveReferences(directory, messages, opts.DownloadAvatars)
	if err != nil {
		return "", err
	}

	grouped := grouping.Group(messages, opts.ReverseOrder)

	transcript := render.TranscriptContext{
		Room:            room,
		Creator:         creator,
		Messages:        grouped,
		People:          refs.people,
		Attachments:     refs.attachments,
		DownloadAvatars: opts.DownloadAvatars,
		TimestampFormat: opts.TimestampFormat,
	}

	if opts.HTMLFormat {
		html, err := a.renderer.RenderHTML(transcript)
		if err != nil {
			return "", err
		}
		if err := folder.WriteFile(folder.Name()+".html", []byte(html)); err != nil {
			return "", err
		}
	}

	if opts.TextFormat {
		text, err := a.renderer.RenderText(transcript)
		if err != nil {
			return "", err
		}
		if err := folder.WriteFile(folder.Name()+".txt", []byte(text)); err != nil {
			return "", err
		}
	}

	if opts.DownloadAttachments {
		targets := refs.downloadTargets()
		runLog.Infof("Downloading %d attachments", len(targets))
		if err := a.downloader.DownloadAll(folder.Subdir(archivefolder.AttachmentsDir), targets, opts.DownloadWorkers); err != nil {
			return "", err
		}
	}

	if opts.DownloadAvatars {
		runLog.Infof("Downloading %d avatars", len(refs.avatars))
		if err := a.downloader.DownloadAll(folder.Subdir(archivefolder.AvatarsDir), refs.avatars, opts.DownloadWorkers); err != nil {
			return "", err
		}
	}

	if opts.JSONFormat {
		dump, err := render.RenderJSON(grouped)
		if err != nil {
			return "", err
		}
		if err := folder.WriteFile(folder.Name()+".json", dump); err != nil {
			return "", err
		}
	}

	details, err := render.RenderSpaceDetails(room, creator)
	if err != nil {
		return "", err
	}
	if err := folder.WriteFile("space_details.json", details); err != nil {
		return "", err
	}

	runLog.Infof("Room %s archived successfully", room.ID)
	return folder.Compress()
}

// references holds the maps accumulated by the resolution pass. They
// are built once, before rendering, and read-only afterwards.
type references struct {
	people      map[string]*models.Person
	attachments map[string]models.AttachmentMetadata
	avatars     map[string]string
}

// resolveReferences folds over the message list resolving each sender's
// identity and each referenced file's metadata exactly once per unique
// email/URL. Avatar URLs are collected only when avatar download was
// requested, keyed to a sanitized-email filename.
func (a *Archiver) resolveReferences(directory *people.Directory, messages []models.Message, wantAvatars bool) (*references, error) {
	refs := &references{
		people:      make(map[string]*models.Person),
		attachments: make(map[string]models.AttachmentMetadata),
		avatars:     make(map[string]string),
	}

	for _, msg := range messages {
		if _, known := refs.people[msg.PersonEmail]; !known {
			person, err := directory.Resolve(msg.PersonEmail, msg.PersonID)
			if err != nil {
				return nil, err
			}
			refs.people[msg.PersonEmail] = person

			if wantAvatars && person.Avatar != "" {
				refs.avatars[person.Avatar] = models.SanitizeName(msg.PersonEmail)
			}
		}

		for _, url := range msg.Files {
			if _, known := refs.attachments[url]; known {
				continue
			}
			metadata, err := a.probe.Details(url)
			if err != nil {
				return nil, err
			}
			refs.attachments[url] = metadata
		}
	}

	return refs, nil
}

// downloadTargets maps each live attachment URL to its destination
// filename. Deleted files still render in transcripts but are never
// fetched.
func (r *references) downloadTargets() map[string]string {
	targets := make(map[string]string, len(r.attachments))
	for url, metadata := range r.attachments {
		if metadata.Deleted {
			continue
		}
		targets[url] = metadata.Filename
	}
	return targets
}
