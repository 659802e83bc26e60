// Package application contém os casos de uso do rate limit de janela fixa e do
// limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Check(key, cfg) devolve um domain.Result (admitido/rejeitado,
// restante e instante de reset).
package application
