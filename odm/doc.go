// Package odm maps Go structs to collections of a schemaless document store.
//
// Record types are described with struct tags and registered with a Client:
//
//	type User struct {
//		ID       string  `msgpack:"_id" odm:"id"`
//		Username string  `msgpack:"username" odm:"unique,convert=lower"`
//		Posts    []*Post `msgpack:"-" odm:"one_to_many=Post"`
//	}
//
//	type Post struct {
//		ID       string `msgpack:"_id" odm:"id"`
//		Title    string `msgpack:"title"`
//		AuthorID string `msgpack:"author_id" odm:"fk=Author"`
//		Author   *User  `msgpack:"-" odm:"many_to_one=User"`
//	}
//
//	client := odm.NewClient(store, odm.NewRegistry())
//	odm.MustRegister[User](client)
//	odm.MustRegister[Post](client)
//	users, _ := odm.NewManager[User](client)
//	err := users.Save(ctx, &User{Username: "daniel"})
//
// Unique fields are checked before every Save and Create. Relations are
// never stored; they are loaded on demand with Populate. Records may
// implement BeforeCreator, BeforeUpdater and BeforeDeleter to take part in
// the persistence lifecycle.
//
// Every operation blocks. Async runs them on a bounded Pool and returns
// futures.
package odm
