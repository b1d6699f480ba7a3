package i18n

const (
	AppName = "app.name"

	NavProfile  = "nav.profile"
	NavLogout   = "nav.logout"
	NavLogin    = "nav.login"
	NavAddMatch = "nav.add_match"

	ListHeading        = "list.heading"
	ListLoadError      = "list.load_error"
	ListEmpty          = "list.empty"
	FilterToggle       = "filter.toggle"
	FilterClear        = "filter.clear"
	FilterApply        = "filter.apply"
	FilterSport        = "filter.sport"
	FilterLocation     = "filter.location"
	FilterAllSports    = "filter.all_sports"
	FilterAllLocations = "filter.all_locations"

	DetailBack           = "detail.back"
	DetailNotFound       = "detail.not_found"
	DetailLoadError      = "detail.load_error"
	DetailDescription    = "detail.description"
	DetailParticipants   = "detail.participants"
	DetailNoParticipants = "detail.no_participants"
	DetailSelf           = "detail.self"
	DetailPlayer         = "detail.player"
	DetailJoinedOn       = "detail.joined_on"
	DetailJoined         = "detail.joined"
	DetailJoin           = "detail.join"
	DetailJoinError      = "detail.join_error"
	DetailMap            = "detail.map"

	FormHeading     = "form.heading"
	FormBack        = "form.back"
	FormSport       = "form.sport"
	FormTime        = "form.time"
	FormTeamA       = "form.team_a"
	FormTeamB       = "form.team_b"
	FormLocation    = "form.location"
	FormVenue       = "form.venue"
	FormLatitude    = "form.latitude"
	FormLongitude   = "form.longitude"
	FormDescription = "form.description"
	FormSubmit      = "form.submit"
	FormError       = "form.error"
	FormInvalid     = "form.invalid"

	FormTeamAPlaceholder       = "form.team_a_placeholder"
	FormTeamBPlaceholder       = "form.team_b_placeholder"
	FormLocationPlaceholder    = "form.location_placeholder"
	FormVenuePlaceholder       = "form.venue_placeholder"
	FormDescriptionPlaceholder = "form.description_placeholder"

	FieldRequired      = "field.required"
	FieldInvalidSport  = "field.invalid_sport"
	FieldInvalidNumber = "field.invalid_number"
	FieldInvalidTime   = "field.invalid_time"

	ProfileNamePlaceholder = "profile.name_placeholder"
	ProfileSave            = "profile.save"
	ProfileEdit            = "profile.edit"
	ProfileLogout          = "profile.logout"
	ProfileTabCreated      = "profile.tab_created"
	ProfileTabJoined       = "profile.tab_joined"
	ProfileNoCreated       = "profile.no_created"
	ProfileCreateFirst     = "profile.create_first"
	ProfileNoJoined        = "profile.no_joined"
	ProfileBrowse          = "profile.browse"
	ProfileLoadError       = "profile.load_error"

	LoginHeading       = "login.heading"
	LoginSignupHeading = "login.signup_heading"
	LoginEmail         = "login.email"
	LoginPassword      = "login.password"
	LoginSubmit        = "login.submit"
	LoginSignupSubmit  = "login.signup_submit"
	LoginInvalid       = "login.invalid"
	LoginLocked        = "login.locked"
	LoginError         = "login.error"
	LoginNoAccount     = "login.no_account"
	LoginHaveAccount   = "login.have_account"
	SignupEmailTaken   = "signup.email_taken"
	SignupWeakPassword = "signup.weak_password"
	SignupConfirm      = "signup.confirm"
	SignupError        = "signup.error"

	SportFootball   = "sport.football"
	SportBasketball = "sport.basketball"
	SportHandball   = "sport.handball"
	SportTennis     = "sport.tennis"
	SportVolleyball = "sport.volleyball"
)

var croatian = map[string]string{
	AppName: "Fali Jedan",

	NavProfile:  "Profil",
	NavLogout:   "Odjava",
	NavLogin:    "Prijava",
	NavAddMatch: "Dodaj utakmicu",

	ListHeading:        "Nadolazeće utakmice",
	ListLoadError:      "Greška pri učitavanju utakmica. Molimo pokušajte ponovno kasnije.",
	ListEmpty:          "Nema pronađenih utakmica. Pokušajte prilagoditi filtere ili dodajte novu utakmicu.",
	FilterToggle:       "Filtriraj utakmice",
	FilterClear:        "Očisti filtere",
	FilterApply:        "Primijeni",
	FilterSport:        "Sport",
	FilterLocation:     "Lokacija",
	FilterAllSports:    "Svi sportovi",
	FilterAllLocations: "Sve lokacije",

	DetailBack:           "Natrag na utakmice",
	DetailNotFound:       "Utakmica nije pronađena",
	DetailLoadError:      "Greška pri učitavanju detalja utakmice. Molimo pokušajte ponovno kasnije.",
	DetailDescription:    "Opis",
	DetailParticipants:   "Prijavljeni igrači (%d)",
	DetailNoParticipants: "Još nema prijavljenih igrača. Budite prvi!",
	DetailSelf:           "Vi",
	DetailPlayer:         "Igrač",
	DetailJoinedOn:       "Pridružio se %s",
	DetailJoined:         "Pridružili ste se ovoj utakmici!",
	DetailJoin:           "Pridruži se utakmici",
	DetailJoinError:      "Greška pri pridruživanju utakmici. Molimo pokušajte ponovno kasnije.",
	DetailMap:            "Karta lokacije",

	FormHeading:     "Dodaj novu utakmicu",
	FormBack:        "Natrag",
	FormSport:       "Sport",
	FormTime:        "Datum i vrijeme utakmice",
	FormTeamA:       "Tim A",
	FormTeamB:       "Tim B",
	FormLocation:    "Grad",
	FormVenue:       "Mjesto",
	FormLatitude:    "Geografska širina",
	FormLongitude:   "Geografska dužina",
	FormDescription: "Opis (neobavezno)",
	FormSubmit:      "Dodaj utakmicu",
	FormError:       "Greška pri dodavanju utakmice. Molimo pokušajte ponovno kasnije.",
	FormInvalid:     "Provjerite označena polja.",

	FormTeamAPlaceholder:       "npr. Dinamo Zagreb",
	FormTeamBPlaceholder:       "npr. Hajduk Split",
	FormLocationPlaceholder:    "npr. Zagreb",
	FormVenuePlaceholder:       "npr. Stadion Maksimir",
	FormDescriptionPlaceholder: "Dodajte dodatne detalje o utakmici...",

	FieldRequired:      "Obavezno polje",
	FieldInvalidSport:  "Odaberite sport",
	FieldInvalidNumber: "Unesite broj",
	FieldInvalidTime:   "Unesite ispravan datum i vrijeme",

	ProfileNamePlaceholder: "Unesite svoje ime",
	ProfileSave:            "Spremi",
	ProfileEdit:            "Uredi",
	ProfileLogout:          "Odjava",
	ProfileTabCreated:      "Kreirane utakmice",
	ProfileTabJoined:       "Pridružene utakmice",
	ProfileNoCreated:       "Još niste kreirali nijednu utakmicu.",
	ProfileCreateFirst:     "Kreirajte svoju prvu utakmicu",
	ProfileNoJoined:        "Još se niste pridružili nijednoj utakmici.",
	ProfileBrowse:          "Pregledajte utakmice",
	ProfileLoadError:       "Greška pri učitavanju profila. Molimo pokušajte ponovno kasnije.",

	LoginHeading:       "Prijava",
	LoginSignupHeading: "Registracija",
	LoginEmail:         "Email",
	LoginPassword:      "Lozinka",
	LoginSubmit:        "Prijavi se",
	LoginSignupSubmit:  "Registriraj se",
	LoginInvalid:       "Neispravan email ili lozinka.",
	LoginLocked:        "Previše neuspjelih pokušaja. Pokušajte ponovno kasnije.",
	LoginError:         "Prijava trenutno nije moguća. Molimo pokušajte ponovno kasnije.",
	LoginNoAccount:     "Nemate račun?",
	LoginHaveAccount:   "Već imate račun?",
	SignupEmailTaken:   "Račun s ovom email adresom već postoji.",
	SignupWeakPassword: "Lozinka mora imati najmanje 6 znakova.",
	SignupConfirm:      "Provjerite email kako biste potvrdili račun, zatim se prijavite.",
	SignupError:        "Registracija trenutno nije moguća. Molimo pokušajte ponovno kasnije.",

	SportFootball:   "Nogomet",
	SportBasketball: "Košarka",
	SportHandball:   "Rukomet",
	SportTennis:     "Tenis",
	SportVolleyball: "Odbojka",
}

var english = map[string]string{
	AppName: "Fali Jedan",

	NavProfile:  "Profile",
	NavLogout:   "Sign out",
	NavLogin:    "Sign in",
	NavAddMatch: "Add match",

	ListHeading:        "Upcoming matches",
	ListLoadError:      "Could not load matches. Please try again later.",
	ListEmpty:          "No matches found. Try adjusting the filters or add a new match.",
	FilterToggle:       "Filter matches",
	FilterClear:        "Clear filters",
	FilterApply:        "Apply",
	FilterSport:        "Sport",
	FilterLocation:     "Location",
	FilterAllSports:    "All sports",
	FilterAllLocations: "All locations",

	DetailBack:           "Back to matches",
	DetailNotFound:       "Match not found",
	DetailLoadError:      "Could not load match details. Please try again later.",
	DetailDescription:    "Description",
	DetailParticipants:   "Players signed up (%d)",
	DetailNoParticipants: "No players signed up yet. Be the first!",
	DetailSelf:           "You",
	DetailPlayer:         "Player",
	DetailJoinedOn:       "Joined %s",
	DetailJoined:         "You have joined this match!",
	DetailJoin:           "Join this match",
	DetailJoinError:      "Could not join the match. Please try again later.",
	DetailMap:            "Location map",

	FormHeading:     "Add a new match",
	FormBack:        "Back",
	FormSport:       "Sport",
	FormTime:        "Match date and time",
	FormTeamA:       "Team A",
	FormTeamB:       "Team B",
	FormLocation:    "City",
	FormVenue:       "Venue",
	FormLatitude:    "Latitude",
	FormLongitude:   "Longitude",
	FormDescription: "Description (optional)",
	FormSubmit:      "Add match",
	FormError:       "Could not add the match. Please try again later.",
	FormInvalid:     "Check the highlighted fields.",

	FormTeamAPlaceholder:       "e.g. Dinamo Zagreb",
	FormTeamBPlaceholder:       "e.g. Hajduk Split",
	FormLocationPlaceholder:    "e.g. Zagreb",
	FormVenuePlaceholder:       "e.g. Maksimir Stadium",
	FormDescriptionPlaceholder: "Add more details about the match...",

	FieldRequired:      "Required",
	FieldInvalidSport:  "Choose a sport",
	FieldInvalidNumber: "Enter a number",
	FieldInvalidTime:   "Enter a valid date and time",

	ProfileNamePlaceholder: "Enter your name",
	ProfileSave:            "Save",
	ProfileEdit:            "Edit",
	ProfileLogout:          "Sign out",
	ProfileTabCreated:      "Created matches",
	ProfileTabJoined:       "Joined matches",
	ProfileNoCreated:       "You have not created any matches yet.",
	ProfileCreateFirst:     "Create your first match",
	ProfileNoJoined:        "You have not joined any matches yet.",
	ProfileBrowse:          "Browse matches",
	ProfileLoadError:       "Could not load your profile. Please try again later.",

	LoginHeading:       "Sign in",
	LoginSignupHeading: "Create an account",
	LoginEmail:         "Email",
	LoginPassword:      "Password",
	LoginSubmit:        "Sign in",
	LoginSignupSubmit:  "Sign up",
	LoginInvalid:       "Invalid email or password.",
	LoginLocked:        "Too many failed attempts. Please try again later.",
	LoginError:         "Signing in is not possible right now. Please try again later.",
	LoginNoAccount:     "No account yet?",
	LoginHaveAccount:   "Already have an account?",
	SignupEmailTaken:   "An account with this email already exists.",
	SignupWeakPassword: "The password must have at least 6 characters.",
	SignupConfirm:      "Check your email to confirm the account, then sign in.",
	SignupError:        "Signing up is not possible right now. Please try again later.",

	SportFootball:   "Football",
	SportBasketball: "Basketball",
	SportHandball:   "Handball",
	SportTennis:     "Tennis",
	SportVolleyball: "Volleyball",
}

// SportKey returns the message key for a sport label.
func SportKey(sport string) string {
	return "sport." + sport
}
