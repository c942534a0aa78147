package people

import (
	"github.com/sirupsen/logrus"

	"webex-room-archiver/internal/models"
	"webex-room-archiver/internal/webexapi"
)

// Directory resolves sender identities for one archive run, memoizing
// results by email so each unique sender costs at most one API call.
// It is not safe for concurrent use; the archiver only calls it from
// its single-threaded resolution pass.
type Directory struct {
	client webexapi.Client
	cache  map[string]*models.Person
	log    logrus.FieldLogger
}

// NewDirectory creates a Directory backed by the given API client
func NewDirectory(client webexapi.Client, log logrus.FieldLogger) *Directory {
	return &Directory{
		client: client,
		cache:  make(map[string]*models.Person),
		log:    log,
	}
}

// Resolve returns the person record for a sender. The first call for an
// email queries the directory service by person identifier; a not-found
// response yields a cached Unresolved placeholder keyed by that email.
// Any other failure propagates unmodified.
func (d *Directory) Resolve(email, personID string) (*models.Person, error) {
	if person, ok := d.cache[email]; ok {
		return person, nil
	}

	person, err := d.client.GetPerson(personID)
	if err != nil {
		if !webexapi.IsNotFound(err) {
			return nil, err
		}
		d.log.Infof("Person %s no longer exists, using placeholder for %s", personID, email)
		person = models.UnresolvedPerson(personID, email)
	}

	d.cache[email] = person
	return person, nil
}

// Lookup resolves an identity that is not tied to a sender email, such
// as the room creator. Not-found responses yield an Unresolved
// placeholder with an unknown email; nothing is cached.
func (d *Directory) Lookup(personID string) (*models.Person, error) {
	person, err := d.client.GetPerson(personID)
	if err != nil {
		if !webexapi.IsNotFound(err) {
			return nil, err
		}
		d.log.Infof("Person %s no longer exists, using placeholder", personID)
		return models.UnresolvedPerson(personID, "unknown"), nil
	}
	return person, nil
}
