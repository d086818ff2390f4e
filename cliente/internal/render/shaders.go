package render

// Shader de extrusão da corrente. Cada vértice carrega, além da posição do
// seu ponto, a extremidade oposta do segmento (no stream de normais), o canto
// local do quad (no stream de UVs) e o raio de extrusão (no .x da tangente).
// Billboards chegam com extremidade igual à posição e extrudam nos eixos da
// câmera; tubos extrudam na perpendicular do segmento vista da câmera, o que
// faz o quad encostar sem folga nos billboards vizinhos.

const chainVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexTangent;
in vec4 vertexColor;

uniform mat4 mvp;
uniform vec3 camPos;
uniform vec3 camRight;
uniform vec3 camUp;

out vec2 fragCorner;
out vec4 fragColor;

void main()
{
    vec2 corner = vertexTexCoord;
    float size = vertexTangent.x;
    vec3 seg = vertexNormal - vertexPosition;

    vec3 world;
    if (dot(seg, seg) < 1e-10) {
        // Billboard: quad virado para a tela, centrado no ponto
        world = vertexPosition + (camRight * corner.x + camUp * corner.y) * size;
    } else {
        // Tubo: extrusão na perpendicular do segmento em relação à câmera
        vec3 viewDir = normalize(camPos - vertexPosition);
        vec3 side = normalize(cross(normalize(seg), viewDir));
        world = vertexPosition + side * corner.y * size;
    }

    fragCorner = corner;
    fragColor = vertexColor;
    gl_Position = mvp * vec4(world, 1.0);
}
`

const chainFragmentShader = `
#version 330

in vec2 fragCorner;
in vec4 fragColor;

out vec4 finalColor;

void main()
{
    // Borda suave: o alpha cai perto da extremidade lateral do quad,
    // escondendo o serrilhado do traço sem precisar de MSAA alto
    float edge = 1.0 - smoothstep(0.6, 1.0, abs(fragCorner.y));
    float cap = 1.0 - smoothstep(0.6, 1.0, abs(fragCorner.x));

    vec4 color = fragColor;
    color.a *= edge * cap;
    if (color.a <= 0.01) {
        discard;
    }
    finalColor = color;
}
`
