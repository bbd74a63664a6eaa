package people

import (
	"github.com/google/uuid"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// Collection is the name of the collection that people are stored in.
const Collection = "Person"

type Person struct {
	storage.StoredValue
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewPerson returns a person with a new random ID. The email is stored as
// given; normalizing it is left to migrations.
func NewPerson(name, email string) *Person {
	return &Person{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}
}

// People provides typed access to the Person collection.
var People = recordstore.NewCollection(Collection, func(p *Person) string {
	return p.ID
})
