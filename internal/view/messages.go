package view

// User-facing messages shown by the pages.
const (
	MsgNetwork         = "Impossible de contacter le serveur."
	MsgServer          = "Erreur côté serveur."
	MsgLoginRequired   = "Vous devez être connecté pour laisser un avis."
	MsgSessionExpired  = "Session expirée, veuillez vous reconnecter."
	MsgCodeSent        = "Un code de vérification a été envoyé à votre email."
	MsgCodeInvalid     = "Code invalide."
	MsgLoginFailed     = "Email ou mot de passe incorrect."
	MsgProfileFailed   = "Impossible de charger le profil utilisateur"
	MsgPlacesFailed    = "Impossible de charger les lieux."
	MsgPlacesEmpty     = "Aucun lieu disponible pour le moment."
	MsgPlaceFailed     = "Impossible de charger le lieu."
	MsgPlaceNotFound   = "Lieu introuvable."
	MsgReviewsFailed   = "Erreur chargement avis."
	MsgReviewsEmpty    = "Aucun avis pour ce lieu."
	MsgCreateFailed    = "Erreur lors de la création du lieu"
	MsgUpdateFailed    = "Erreur lors de la mise à jour du lieu"
	MsgDeleteFailed    = "Erreur lors de la suppression du lieu"
	MsgIncomplete      = "Le lieu a été enregistré, mais certains équipements ou images n'ont pas pu être ajoutés."
	MsgCompensated     = "Le lieu n'a pas pu être créé complètement et a été supprimé."
	MsgForbidden       = "Action non autorisée."
	MsgReviewDeleteErr = "Erreur lors de la suppression de l'avis"
)
